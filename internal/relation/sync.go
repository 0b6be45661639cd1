package relation

import "fmt"

// Link records the edge between the owning collection's entity and
// member, and mirrors it onto the member's inverse collection only when
// that side is already materialized. The unmaterialized inverse is left
// alone: durable truth comes from the owning side, and the inverse will
// see the edge on its next load.
//
// Link performs no durable I/O, is idempotent, and never fails because
// of materialization state. It fails only when a handle is nil or the
// collection wiring is wrong.
func Link(owning *Collection, member *Handle, inverse *Collection) error {
	if err := checkSides(owning, member, inverse); err != nil {
		return err
	}
	owning.Add(member)
	if inverse != nil && inverse.IsMaterialized() {
		inverse.Add(owning.Owner())
	}
	return nil
}

// Unlink removes the edge, symmetric to Link. Unlinking a non-existent
// edge is a no-op, not an error.
func Unlink(owning *Collection, member *Handle, inverse *Collection) error {
	if err := checkSides(owning, member, inverse); err != nil {
		return err
	}
	owning.Remove(member)
	if inverse != nil && inverse.IsMaterialized() {
		inverse.Remove(owning.Owner())
	}
	return nil
}

func checkSides(owning *Collection, member *Handle, inverse *Collection) error {
	if owning == nil || owning.Owner() == nil || member == nil {
		return ErrUnresolvedHandle
	}
	if !owning.Owning() {
		return fmt.Errorf("collection %s.%s is not the owning side", owning.Owner(), owning.Field())
	}
	if inverse != nil && inverse.Owning() {
		return fmt.Errorf("collection %s.%s cannot be both sides", inverse.Owner(), inverse.Field())
	}
	return nil
}
