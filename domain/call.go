package domain

import "github.com/google/uuid"

// HostEventsInterface is the pseudo interface under which host-wide named
// events are correlated.
const HostEventsInterface = "$host"

// Call is one inbound remote procedure call as handed over by the transport.
type Call struct {
	TrackingID     uuid.UUID
	SessionID      uuid.UUID `validate:"required"`
	InterfaceName  string    `validate:"required"`
	CorrelationSet []CorrelationToken
	MethodName     string     `validate:"required"`
	ParamDefs      []ParamDef `validate:"omitempty,dive"`
	Args           []any
}

// AuthRequest carries the credentials presented at logon.
type AuthRequest struct {
	Credentials map[string]string
}

type AuthResult struct {
	Success      bool
	Identity     Identity
	ErrorMessage string
}
