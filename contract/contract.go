//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"zyan/domain"

	"github.com/google/uuid"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// ThreadPool runs fire-and-forget tasks. Submit must never wait for the task.
type ThreadPool interface {
	Submit(task func()) error
}

// AuthenticationProvider validates logon credentials. It is consulted exactly
// once per logon.
type AuthenticationProvider interface {
	Authenticate(ctx context.Context, req domain.AuthRequest) domain.AuthResult
}

// CallbackSink forwards notifications to the process owning a session.
type CallbackSink interface {
	Consume(ctx context.Context, n domain.Notification) error
}

// IDispatcher is the surface the transport layer consumes.
type IDispatcher interface {
	Logon(ctx context.Context, req domain.AuthRequest) (domain.Session, error)
	Logoff(ctx context.Context, sessionID uuid.UUID) error
	RenewSession(ctx context.Context, sessionID uuid.UUID) (time.Time, error)
	Invoke(ctx context.Context, call domain.Call) (any, error)
	AddEventHandler(ctx context.Context, token domain.CorrelationToken, local domain.Handler) error
	RemoveEventHandler(ctx context.Context, token domain.CorrelationToken) error
	Subscribe(ctx context.Context, token domain.CorrelationToken, local domain.Handler) error
	Unsubscribe(ctx context.Context, token domain.CorrelationToken) error
	RegisterCallbackSink(sessionID uuid.UUID, sink CallbackSink) (unregister func(), err error)
}
