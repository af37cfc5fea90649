package domain

// errors.go defines domain-specific error types.
type domainErr struct {
	message string
}

// Error returns the error message.
func (e domainErr) Error() string {
	return e.message
}

// NotFoundErr represents an error when a requested entity is not found.
type NotFoundErr struct {
	domainErr
}

// NewNotFoundErr creates a new NotFoundErr with the given message.
func NewNotFoundErr(message string) *NotFoundErr {
	return &NotFoundErr{
		domainErr: domainErr{message: message},
	}
}

// ValidationErr represents an error when validation fails.
type ValidationErr struct {
	domainErr
}

// NewValidationErr creates a new ValidationErr with the given message.
func NewValidationErr(message string) *ValidationErr {
	return &ValidationErr{
		domainErr: domainErr{message: message},
	}
}

// ModelTransportErr represents a network or parse failure talking to the
// model server. It is run-terminal: the orchestration loop surfaces it to
// the caller instead of retrying.
type ModelTransportErr struct {
	domainErr
}

// NewModelTransportErr creates a new ModelTransportErr with the given message.
func NewModelTransportErr(message string) *ModelTransportErr {
	return &ModelTransportErr{
		domainErr: domainErr{message: message},
	}
}

// EmptyAnswerErr represents a forced finalization that produced no text.
type EmptyAnswerErr struct {
	domainErr
}

// NewEmptyAnswerErr creates a new EmptyAnswerErr with the given message.
func NewEmptyAnswerErr(message string) *EmptyAnswerErr {
	return &EmptyAnswerErr{
		domainErr: domainErr{message: message},
	}
}
