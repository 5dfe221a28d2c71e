package diff

import "fmt"

// Kind is the marker interface implemented by every diff diagnostic
// variant. Kept entirely separate from logbook.SimKind: a write going
// missing during a comparison is a different kind of fact than a driver
// misbehaving during simulation, and the two families are never unified.
type Kind interface {
	diffKind()
}

// Removed means an I/O write present in the "before" log has no
// counterpart in "after".
type Removed struct {
	Addr uint16
	Data uint8
}

// Added means an I/O write present in "after" has no counterpart in
// "before".
type Added struct {
	Addr uint16
	Data uint8
}

// Moved means the same (addr, data) pair was written in both logs within
// the same tick, but at a different cycle offset. Delta is
// after.cycle - before.cycle.
type Moved struct {
	Addr  uint16
	Data  uint8
	Delta int32
}

// OtherValue means the same address was written in both logs within the
// same tick, but with different data.
type OtherValue struct {
	Addr   uint16
	Before uint8
	After  uint8
}

// OtherReg means paired writes within the same tick landed on different
// addresses but carried the same data - a weaker signal, typically caused
// by a copy-paste typo in the driver, retained because it happens.
type OtherReg struct {
	BeforeAddr uint16
	Data       uint8
	AfterAddr  uint16
}

func (Removed) diffKind()    {}
func (Added) diffKind()      {}
func (Moved) diffKind()      {}
func (OtherValue) diffKind() {}
func (OtherReg) diffKind()   {}

func (k Removed) String() string {
	return fmt.Sprintf("removed: write of $%02x to $%04x no longer happens", k.Data, k.Addr)
}

func (k Added) String() string {
	return fmt.Sprintf("added: new write of $%02x to $%04x", k.Data, k.Addr)
}

func (k Moved) String() string {
	return fmt.Sprintf("moved: write of $%02x to $%04x shifted by %+d cycles", k.Data, k.Addr, k.Delta)
}

func (k OtherValue) String() string {
	return fmt.Sprintf("value changed: $%04x was $%02x, now $%02x", k.Addr, k.Before, k.After)
}

func (k OtherReg) String() string {
	return fmt.Sprintf("register changed: write of $%02x moved from $%04x to $%04x", k.Data, k.BeforeAddr, k.AfterAddr)
}
