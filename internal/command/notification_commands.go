package command

// SendNotificationCommand carries the input of the send_notification
// operation. Variables feed {key} placeholder substitution in the body.
type SendNotificationCommand struct {
	Recipient  string
	Channel    string
	Subject    string
	Body       string
	UserID     *string
	TemplateID *string
	Variables  map[string]any
}

func SendNotificationCommandFromMap(m map[string]any) (SendNotificationCommand, error) {
	if err := checkFields(m, "recipient", "channel", "subject", "body", "user_id", "template_id", "variables"); err != nil {
		return SendNotificationCommand{}, err
	}
	recipient, err := requireString(m, "recipient")
	if err != nil {
		return SendNotificationCommand{}, err
	}
	channel, err := requireString(m, "channel")
	if err != nil {
		return SendNotificationCommand{}, err
	}
	subject, err := requireString(m, "subject")
	if err != nil {
		return SendNotificationCommand{}, err
	}
	body, err := requireString(m, "body")
	if err != nil {
		return SendNotificationCommand{}, err
	}
	userID, err := optionalString(m, "user_id")
	if err != nil {
		return SendNotificationCommand{}, err
	}
	templateID, err := optionalString(m, "template_id")
	if err != nil {
		return SendNotificationCommand{}, err
	}
	variables, err := optionalMapField(m, "variables")
	if err != nil {
		return SendNotificationCommand{}, err
	}
	return SendNotificationCommand{
		Recipient:  recipient,
		Channel:    channel,
		Subject:    subject,
		Body:       body,
		UserID:     userID,
		TemplateID: templateID,
		Variables:  variables,
	}, nil
}
