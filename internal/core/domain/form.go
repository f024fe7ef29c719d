package domain

// FormTarget says whether a dialog creates a new record or edits an existing one.
// The zero value is Creating.
type FormTarget struct {
	id string
}

// Creating targets a record that does not exist yet.
func Creating() FormTarget { return FormTarget{} }

// Editing targets the record with the given id.
func Editing(id string) FormTarget { return FormTarget{id: id} }

func (t FormTarget) IsEditing() bool { return t.id != "" }

// ID is empty when creating.
func (t FormTarget) ID() string { return t.id }
