package domain

// Component kinds of the dialogs the application opens.
const (
	ModalEditTodo      = "edit-todo"
	ModalEditDiary     = "edit-diary"
	ModalEditRecipe    = "edit-recipe"
	ModalEditExpense   = "edit-expense"
	ModalConfirmDelete = "confirm-delete"
	ModalResetPassword = "reset-password"
)

// ModalDescriptor describes one open dialog.
//
// ID identifies the dialog instance. When empty it is derived from
// ComponentKind and Subject so that opening the same dialog for the same
// subject twice resolves to the same instance. OnClose runs once, when the
// dialog leaves the stack.
type ModalDescriptor struct {
	ID            string
	ComponentKind string
	Subject       string
	Props         map[string]any
	OnClose       func()
}

// ModalID returns the deterministic id of a dialog for a subject.
func ModalID(componentKind, subject string) string {
	if subject == "" {
		return componentKind
	}
	return componentKind + "-" + subject
}

// ResolvedID returns d.ID, or the derived id when it is unset.
func (d ModalDescriptor) ResolvedID() string {
	if d.ID != "" {
		return d.ID
	}
	return ModalID(d.ComponentKind, d.Subject)
}

// EditModalKind returns the edit dialog kind for a resource.
func EditModalKind(r ResourceType) string {
	switch r {
	case ResourceTodo:
		return ModalEditTodo
	case ResourceDiary:
		return ModalEditDiary
	case ResourceRecipe:
		return ModalEditRecipe
	case ResourceExpense:
		return ModalEditExpense
	default:
		return "edit-" + string(r)
	}
}
