package controller

import (
	"context"
	"fmt"
)

// ActionKind is a per-row trigger.
type ActionKind string

const (
	ActionEdit   ActionKind = "edit"
	ActionDelete ActionKind = "delete"
)

// Action is a row trigger carrying the row identifier, as delivered by a
// single delegated listener on the table.
type Action struct {
	Kind ActionKind
	NIM  string
}

// ParseAction builds an Action from the raw attribute values of a trigger.
func ParseAction(kind, nim string) (Action, error) {
	switch ActionKind(kind) {
	case ActionEdit, ActionDelete:
	default:
		return Action{}, fmt.Errorf("unknown row action %q", kind)
	}
	if nim == "" {
		return Action{}, fmt.Errorf("row action %q without nim", kind)
	}
	return Action{Kind: ActionKind(kind), NIM: nim}, nil
}

// Dispatch runs a row action against the currently rendered rows.
func (c *Controller) Dispatch(ctx context.Context, a Action) error {
	switch a.Kind {
	case ActionEdit:
		for _, r := range c.rows {
			if r.NIM == a.NIM {
				c.Edit(r)
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrUnknownRow, a.NIM)

	case ActionDelete:
		return c.Delete(ctx, a.NIM)

	default:
		return fmt.Errorf("unknown row action %q", a.Kind)
	}
}
