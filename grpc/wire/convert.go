package wire

import (
	"fmt"
	"time"

	"zyan/domain"
	"zyan/errors"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"google.golang.org/protobuf/types/known/structpb"
)

// ToValue converts a Go value to its wire form. uuid.UUID and time.Time become
// strings and []byte becomes base64, which is what the argument binders on
// the receiving side accept. Numbers always arrive as float64.
func ToValue(v any) (*structpb.Value, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return structpb.NewStringValue(x.String()), nil
	case time.Time:
		return structpb.NewStringValue(x.UTC().Format(time.RFC3339Nano)), nil
	case []string:
		return ToValue(lo.ToAnySlice(x))
	case map[string]string:
		return ToValue(lo.MapValues(x, func(v string, _ string) any { return v }))
	case []any:
		list, err := ToList(x)
		if err != nil {
			return nil, err
		}
		return structpb.NewListValue(list), nil
	case map[string]any:
		s := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(x))}
		for k, item := range x {
			val, err := ToValue(item)
			if err != nil {
				return nil, err
			}
			s.Fields[k] = val
		}
		return structpb.NewStructValue(s), nil
	default:
		val, err := structpb.NewValue(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errors.ErrInvalidArgument, err)
		}
		return val, nil
	}
}

func ToList(values []any) (*structpb.ListValue, error) {
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(values))}
	for i, v := range values {
		val, err := ToValue(v)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		list.Values = append(list.Values, val)
	}
	return list, nil
}

func FromList(list *structpb.ListValue) []any {
	return list.AsSlice()
}

func str(fields map[string]*structpb.Value, key string) string {
	return fields[key].GetStringValue()
}

func uuidOf(fields map[string]*structpb.Value, key string) (uuid.UUID, error) {
	raw := str(fields, key)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s: %w", errors.ErrInvalidArgument, key, err)
	}
	return id, nil
}

func timeOf(fields map[string]*structpb.Value, key string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, str(fields, key))
	return t
}

func timeValue(t time.Time) *structpb.Value {
	return structpb.NewStringValue(t.UTC().Format(time.RFC3339Nano))
}

func stringsValue(values []string) *structpb.Value {
	return structpb.NewListValue(&structpb.ListValue{
		Values: lo.Map(values, func(v string, _ int) *structpb.Value { return structpb.NewStringValue(v) }),
	})
}

func stringsOf(fields map[string]*structpb.Value, key string) []string {
	return lo.Map(fields[key].GetListValue().GetValues(), func(v *structpb.Value, _ int) string {
		return v.GetStringValue()
	})
}

func EncodeFilter(desc *domain.FilterDescriptor) (*structpb.Value, error) {
	if desc == nil {
		return structpb.NewNullValue(), nil
	}
	values, err := ToList(desc.Values)
	if err != nil {
		return nil, err
	}
	children := &structpb.ListValue{}
	for i := range desc.Children {
		child, err := EncodeFilter(&desc.Children[i])
		if err != nil {
			return nil, err
		}
		children.Values = append(children.Values, child)
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"kind":     structpb.NewStringValue(desc.Kind),
		"index":    structpb.NewNumberValue(float64(desc.Index)),
		"values":   structpb.NewListValue(values),
		"children": structpb.NewListValue(children),
	}}), nil
}

func DecodeFilter(v *structpb.Value) *domain.FilterDescriptor {
	s := v.GetStructValue()
	if s == nil {
		return nil
	}
	fields := s.GetFields()
	desc := &domain.FilterDescriptor{
		Kind:   str(fields, "kind"),
		Index:  int(fields["index"].GetNumberValue()),
		Values: FromList(fields["values"].GetListValue()),
	}
	for _, child := range fields["children"].GetListValue().GetValues() {
		if c := DecodeFilter(child); c != nil {
			desc.Children = append(desc.Children, *c)
		}
	}
	return desc
}

func EncodeToken(t domain.CorrelationToken) (*structpb.Struct, error) {
	f, err := EncodeFilter(t.Filter)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"session_id":     structpb.NewStringValue(t.SessionID.String()),
		"interface":      structpb.NewStringValue(t.InterfaceName),
		"member":         structpb.NewStringValue(t.MemberName),
		"handler_id":     structpb.NewStringValue(t.HandlerID.String()),
		"filter":         f,
		"filter_locally": structpb.NewBoolValue(t.FilterLocally),
		"delivery":       structpb.NewStringValue(t.DeliveryMode.String()),
	}}, nil
}

func DecodeToken(s *structpb.Struct) (domain.CorrelationToken, error) {
	fields := s.GetFields()
	sessionID, err := uuidOf(fields, "session_id")
	if err != nil {
		return domain.CorrelationToken{}, err
	}
	handlerID, err := uuidOf(fields, "handler_id")
	if err != nil {
		return domain.CorrelationToken{}, err
	}
	mode := domain.DeliveryRemote
	if str(fields, "delivery") == domain.DeliveryLocal.String() {
		mode = domain.DeliveryLocal
	}
	return domain.CorrelationToken{
		SessionID:     sessionID,
		InterfaceName: str(fields, "interface"),
		MemberName:    str(fields, "member"),
		HandlerID:     handlerID,
		Filter:        DecodeFilter(fields["filter"]),
		FilterLocally: fields["filter_locally"].GetBoolValue(),
		DeliveryMode:  mode,
	}, nil
}

// TokenRequest wraps a token for the AddEventHandler family of calls.
func TokenRequest(t domain.CorrelationToken) (*structpb.Struct, error) {
	token, err := EncodeToken(t)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{"token": structpb.NewStructValue(token)}}, nil
}

func TokenFromRequest(s *structpb.Struct) (domain.CorrelationToken, error) {
	token := s.GetFields()["token"].GetStructValue()
	if token == nil {
		return domain.CorrelationToken{}, fmt.Errorf("%w: token is missing", errors.ErrInvalidToken)
	}
	return DecodeToken(token)
}

// EncodeCall leaves "params" out when ParamDefs is nil so the host resolves
// the method by name alone.
func EncodeCall(call domain.Call) (*structpb.Struct, error) {
	args, err := ToList(call.Args)
	if err != nil {
		return nil, err
	}
	set := &structpb.ListValue{}
	for _, t := range call.CorrelationSet {
		token, err := EncodeToken(t)
		if err != nil {
			return nil, err
		}
		set.Values = append(set.Values, structpb.NewStructValue(token))
	}
	fields := map[string]*structpb.Value{
		"tracking_id":     structpb.NewStringValue(call.TrackingID.String()),
		"interface":       structpb.NewStringValue(call.InterfaceName),
		"method":          structpb.NewStringValue(call.MethodName),
		"args":            structpb.NewListValue(args),
		"correlation_set": structpb.NewListValue(set),
	}
	if call.ParamDefs != nil {
		params := &structpb.ListValue{}
		for _, p := range call.ParamDefs {
			params.Values = append(params.Values, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
				"name": structpb.NewStringValue(p.Name),
				"type": structpb.NewStringValue(string(p.Type)),
			}}))
		}
		fields["params"] = structpb.NewListValue(params)
	}
	return &structpb.Struct{Fields: fields}, nil
}

func DecodeCall(s *structpb.Struct) (domain.Call, error) {
	fields := s.GetFields()
	trackingID, err := uuidOf(fields, "tracking_id")
	if err != nil {
		return domain.Call{}, err
	}
	call := domain.Call{
		TrackingID:    trackingID,
		InterfaceName: str(fields, "interface"),
		MethodName:    str(fields, "method"),
		Args:          FromList(fields["args"].GetListValue()),
	}
	if params, ok := fields["params"]; ok {
		call.ParamDefs = make([]domain.ParamDef, 0, len(params.GetListValue().GetValues()))
		for _, p := range params.GetListValue().GetValues() {
			pf := p.GetStructValue().GetFields()
			call.ParamDefs = append(call.ParamDefs, domain.Param(str(pf, "name"), domain.ParamType(str(pf, "type"))))
		}
	}
	for _, v := range fields["correlation_set"].GetListValue().GetValues() {
		token, err := DecodeToken(v.GetStructValue())
		if err != nil {
			return domain.Call{}, err
		}
		call.CorrelationSet = append(call.CorrelationSet, token)
	}
	return call, nil
}

func EncodeResult(result any) (*structpb.Struct, error) {
	val, err := ToValue(result)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{"result": val}}, nil
}

func DecodeResult(s *structpb.Struct) any {
	return s.GetFields()["result"].AsInterface()
}

func EncodeNotification(n domain.Notification) (*structpb.Struct, error) {
	args, err := ToList(n.Args)
	if err != nil {
		return nil, err
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"handler_id": structpb.NewStringValue(n.HandlerID.String()),
		"interface":  structpb.NewStringValue(n.InterfaceName),
		"member":     structpb.NewStringValue(n.MemberName),
		"args":       structpb.NewListValue(args),
		"raised_at":  timeValue(n.RaisedAt),
	}}, nil
}

func DecodeNotification(s *structpb.Struct) (domain.Notification, error) {
	fields := s.GetFields()
	handlerID, err := uuidOf(fields, "handler_id")
	if err != nil {
		return domain.Notification{}, err
	}
	return domain.Notification{
		HandlerID:     handlerID,
		InterfaceName: str(fields, "interface"),
		MemberName:    str(fields, "member"),
		Args:          FromList(fields["args"].GetListValue()),
		RaisedAt:      timeOf(fields, "raised_at"),
	}, nil
}

func EncodeSession(s domain.Session) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"id":              structpb.NewStringValue(s.ID.String()),
		"name":            structpb.NewStringValue(s.Identity.Name),
		"auth_type":       structpb.NewStringValue(s.Identity.AuthenticationType),
		"roles":           stringsValue(s.Identity.Roles),
		"created_at":      timeValue(s.CreatedAt),
		"expires_at":      timeValue(s.ExpiresAt),
		"last_renewed_at": timeValue(s.LastRenewedAt),
	}}
}

func DecodeSession(s *structpb.Struct) (domain.Session, error) {
	fields := s.GetFields()
	id, err := uuidOf(fields, "id")
	if err != nil {
		return domain.Session{}, err
	}
	return domain.Session{
		ID: id,
		Identity: domain.Identity{
			Name:               str(fields, "name"),
			AuthenticationType: str(fields, "auth_type"),
			Roles:              stringsOf(fields, "roles"),
		},
		CreatedAt:     timeOf(fields, "created_at"),
		ExpiresAt:     timeOf(fields, "expires_at"),
		LastRenewedAt: timeOf(fields, "last_renewed_at"),
	}, nil
}

func LogonRequest(credentials map[string]string) *structpb.Struct {
	creds := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(credentials))}
	for k, v := range credentials {
		creds.Fields[k] = structpb.NewStringValue(v)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{"credentials": structpb.NewStructValue(creds)}}
}

func CredentialsFromRequest(s *structpb.Struct) map[string]string {
	creds := s.GetFields()["credentials"].GetStructValue().GetFields()
	out := make(map[string]string, len(creds))
	for k, v := range creds {
		out[k] = v.GetStringValue()
	}
	return out
}

func ExpiryResponse(t time.Time) *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{"expires_at": timeValue(t)}}
}

func ExpiryFromResponse(s *structpb.Struct) time.Time {
	return timeOf(s.GetFields(), "expires_at")
}
