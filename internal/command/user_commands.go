package command

// CreateUserCommand carries the input of the create_user operation.
type CreateUserCommand struct {
	Name     string
	Email    string
	Age      *int
	Metadata map[string]any
}

// CreateUserCommandFromMap decodes the raw payload strictly: unknown
// fields, missing required fields and type mismatches are validation
// errors, and nothing is partially applied.
func CreateUserCommandFromMap(m map[string]any) (CreateUserCommand, error) {
	if err := checkFields(m, "name", "email", "age", "metadata"); err != nil {
		return CreateUserCommand{}, err
	}
	name, err := requireString(m, "name")
	if err != nil {
		return CreateUserCommand{}, err
	}
	email, err := requireString(m, "email")
	if err != nil {
		return CreateUserCommand{}, err
	}
	age, err := optionalInt(m, "age")
	if err != nil {
		return CreateUserCommand{}, err
	}
	metadata, err := optionalMapField(m, "metadata")
	if err != nil {
		return CreateUserCommand{}, err
	}
	return CreateUserCommand{Name: name, Email: email, Age: age, Metadata: metadata}, nil
}

// UpdateUserCommand carries the input of the update_user operation. Nil
// fields mean "leave unchanged".
type UpdateUserCommand struct {
	UserID   string
	Name     *string
	Age      *int
	Metadata map[string]any
}

func UpdateUserCommandFromMap(m map[string]any) (UpdateUserCommand, error) {
	if err := checkFields(m, "user_id", "name", "age", "metadata"); err != nil {
		return UpdateUserCommand{}, err
	}
	userID, err := requireString(m, "user_id")
	if err != nil {
		return UpdateUserCommand{}, err
	}
	name, err := optionalString(m, "name")
	if err != nil {
		return UpdateUserCommand{}, err
	}
	age, err := optionalInt(m, "age")
	if err != nil {
		return UpdateUserCommand{}, err
	}
	metadata, err := optionalMapField(m, "metadata")
	if err != nil {
		return UpdateUserCommand{}, err
	}
	return UpdateUserCommand{UserID: userID, Name: name, Age: age, Metadata: metadata}, nil
}

// DeleteUserCommand carries the input of the delete_user operation.
type DeleteUserCommand struct {
	UserID string
}

func DeleteUserCommandFromMap(m map[string]any) (DeleteUserCommand, error) {
	if err := checkFields(m, "user_id"); err != nil {
		return DeleteUserCommand{}, err
	}
	userID, err := requireString(m, "user_id")
	if err != nil {
		return DeleteUserCommand{}, err
	}
	return DeleteUserCommand{UserID: userID}, nil
}
