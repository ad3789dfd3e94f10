//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"zyan/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const userPrefix = "user:"

type IUserRepository interface {
	CreateUser(email, hashedPassword string, roles []string) (string, error)
	GetUserByEmail(email string) (User, error)
	ListUsers() ([]User, error)
}

type UserRepository struct {
	db  *badger.DB
	log *slog.Logger
	now func() time.Time
}

func NewUserRepository(db *badger.DB, log *slog.Logger) *UserRepository {
	return &UserRepository{db: db, log: log, now: time.Now}
}

// User is the account backing the password authentication provider.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
}

// CreateUser persists a user keyed by email and returns its generated ID.
func (u *UserRepository) CreateUser(email, hashedPassword string, roles []string) (string, error) {
	if len(roles) == 0 {
		roles = []string{"user"}
	}
	user := User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hashedPassword,
		Roles:        roles,
		CreatedAt:    u.now().UTC(),
	}
	data, err := encodeUser(user)
	if err != nil {
		return "", err
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		key := []byte(userPrefix + email)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return "", err
	}
	u.log.Debug("User created", "email", email, "roles", roles)
	return user.ID, nil
}

// GetUserByEmail returns errors.ErrInvalidCredentials when the user is unknown.
func (u *UserRepository) GetUserByEmail(email string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(userPrefix + email))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errors.ErrInvalidCredentials
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			user, err = decodeUser(val)
			return err
		})
	})
	return user, err
}

// ListUsers returns every user ordered by email.
func (u *UserRepository) ListUsers() ([]User, error) {
	var users []User
	err := u.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(userPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				user, err := decodeUser(val)
				if err != nil {
					return err
				}
				users = append(users, user)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, err
}

// Users are stored as a protobuf Struct so the record stays self describing
// for the debug inspector.
func encodeUser(user User) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"id":            user.ID,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"roles":         lo.Map(user.Roles, func(r string, _ int) any { return r }),
		"created_at":    user.CreatedAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("user encoding failed: %w", err)
	}
	data, err := proto.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal failed: %w", err)
	}
	return data, nil
}

func decodeUser(data []byte) (User, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return User{}, fmt.Errorf("unmarshal failed: %w", err)
	}
	fields := s.GetFields()
	createdAt, _ := time.Parse(time.RFC3339Nano, fields["created_at"].GetStringValue())
	roles := lo.Map(fields["roles"].GetListValue().GetValues(), func(v *structpb.Value, _ int) string {
		return v.GetStringValue()
	})
	return User{
		ID:           fields["id"].GetStringValue(),
		Email:        fields["email"].GetStringValue(),
		PasswordHash: fields["password_hash"].GetStringValue(),
		Roles:        roles,
		CreatedAt:    createdAt,
	}, nil
}

// DecodeUser exposes the stored record, e.g. to the Badger inspector.
func DecodeUser(data []byte) (User, error) {
	return decodeUser(data)
}
