package wire

import (
	"testing"
	"time"

	"zyan/domain"
	"zyan/filter"
	"zyan/invoker"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCall_Args_Bind_After_Wire(t *testing.T) {
	req := require.New(t)
	id := uuid.New()
	at := time.Date(2026, 3, 1, 12, 30, 0, 42, time.UTC)
	params := []domain.ParamDef{
		domain.Param("id", domain.TypeUUID),
		domain.Param("at", domain.TypeTime),
		domain.Param("payload", domain.TypeBytes),
		domain.Param("count", domain.TypeInt),
		domain.Param("tags", domain.TypeList),
	}
	call := domain.Call{
		TrackingID:    uuid.New(),
		InterfaceName: "Store",
		MethodName:    "Put",
		ParamDefs:     params,
		Args:          []any{id, at, []byte("raw"), 7, []string{"a", "b"}},
	}

	encoded, err := EncodeCall(call)
	req.NoError(err)
	decoded, err := DecodeCall(encoded)
	req.NoError(err)
	bound, err := invoker.GetInvoker(domain.SignatureOf(decoded.ParamDefs)).Bind(decoded.Args)
	req.NoError(err)

	req.Equal(call.TrackingID, decoded.TrackingID)
	req.Equal(params, decoded.ParamDefs)
	req.Equal(id, bound[0])
	req.True(at.Equal(bound[1].(time.Time)))
	req.Equal([]byte("raw"), bound[2])
	req.Equal(7, bound[3])
	req.Equal([]any{"a", "b"}, bound[4])
}

func TestCall_Without_Params_Stays_Nil(t *testing.T) {
	req := require.New(t)

	encoded, err := EncodeCall(domain.Call{InterfaceName: "Store", MethodName: "Get"})
	req.NoError(err)
	decoded, err := DecodeCall(encoded)
	req.NoError(err)

	req.Nil(decoded.ParamDefs)
	req.Empty(decoded.Args)
}

func TestToken_Filter_Survives_Wire(t *testing.T) {
	req := require.New(t)
	allowed := uuid.New()
	token := domain.CorrelationToken{
		SessionID:     uuid.New(),
		InterfaceName: "Chat",
		MemberName:    "Posted",
		HandlerID:     uuid.New(),
		Filter: filter.CombineDescriptors(
			filter.SessionsDescriptor(0, allowed),
			filter.KeywordsDescriptor(1, "urgent"),
		),
		FilterLocally: true,
	}

	msg, err := TokenRequest(token)
	req.NoError(err)
	decoded, err := TokenFromRequest(msg)
	req.NoError(err)
	f, err := filter.Build(decoded.Filter)
	req.NoError(err)

	req.Equal(token.Key(), decoded.Key())
	req.True(decoded.FilterLocally)
	req.Equal(domain.DeliveryRemote, decoded.DeliveryMode)
	req.True(f.AllowInvocation([]any{allowed.String(), "this is URGENT"}))
	req.False(f.AllowInvocation([]any{uuid.NewString(), "this is urgent"}))
}

func TestNotification_And_Session(t *testing.T) {
	req := require.New(t)
	n := domain.Notification{
		HandlerID:     uuid.New(),
		InterfaceName: "Clock",
		MemberName:    "Tick",
		Args:          []any{int64(3)},
		RaisedAt:      time.Now().UTC(),
	}
	s := domain.Session{
		ID:        uuid.New(),
		Identity:  domain.Identity{Name: "alice", AuthenticationType: "password", Roles: []string{"admin"}},
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Minute),
	}

	encoded, err := EncodeNotification(n)
	req.NoError(err)
	got, err := DecodeNotification(encoded)
	req.NoError(err)
	session, err := DecodeSession(EncodeSession(s))
	req.NoError(err)

	req.Equal(n.HandlerID, got.HandlerID)
	req.Equal([]any{float64(3)}, got.Args)
	req.True(n.RaisedAt.Equal(got.RaisedAt))
	req.Equal(s.ID, session.ID)
	req.Equal(s.Identity, session.Identity)
	req.True(s.ExpiresAt.Equal(session.ExpiresAt))
}

func TestToValue_Rejects_Unknown_Types(t *testing.T) {
	req := require.New(t)

	_, err := ToValue(struct{ X int }{1})

	req.Error(err)
}
