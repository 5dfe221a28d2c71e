// This Core models the instruction classes a GBS driver actually uses -
// loads, arithmetic, control flow, stack operations, and the handful of
// I/O forms that reach the APU band - rather than the complete SM83 set.
// The CB-prefix bitwise sub-table in particular is entirely unmodelled:
// real GBS drivers don't touch it during LOAD/INIT/PLAY, and every byte
// this Core doesn't recognise decodes to InvalidOpcode instead of being
// silently misinterpreted. That outcome is exactly what the call-frame
// interpreter in internal/sim is built to turn into a diagnosable
// simulation failure, so an unsupported driver fails loud rather than
// producing a corrupted, misleading trace.
package cpu
