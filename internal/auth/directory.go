package auth

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"ats-portal/internal/rbac"
	"ats-portal/internal/session"
	"ats-portal/pkg/password"
	"ats-portal/pkg/validator"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// directoryNamespace seeds stable IDs for entries that do not carry one.
var directoryNamespace = uuid.MustParse("6f1c3b8e-2d7a-4b59-9a0e-6c41d2f0b7a3")

// DirectoryEntry is one user in the directory file.
type DirectoryEntry struct {
	ID           string `yaml:"id" validate:"omitempty,uuid"`
	Email        string `yaml:"email" validate:"required,email,max=255"`
	Name         string `yaml:"name" validate:"required,max=255"`
	Role         string `yaml:"role" validate:"required,role"`
	Department   string `yaml:"department" validate:"max=255"`
	PasswordHash string `yaml:"password_hash" validate:"required,startswith=$2"`
}

type directoryFile struct {
	Users []DirectoryEntry `yaml:"users"`
}

type directoryUser struct {
	identity session.Identity
	hash     string
}

// Directory authenticates against a static set of users with bcrypt hashes.
type Directory struct {
	users     map[string]directoryUser
	dummyHash string
}

// DirectoryOption customizes a Directory.
type DirectoryOption func(*directoryOptions)

type directoryOptions struct {
	cost int
}

// WithDummyCost sets the bcrypt cost of the hash compared for unknown users.
// It should match the cost of the stored hashes.
func WithDummyCost(cost int) DirectoryOption {
	return func(o *directoryOptions) { o.cost = cost }
}

// NewValidator returns a validator with the role tag registered.
func NewValidator() *validator.Validator {
	v := validator.New()
	if err := v.RegisterString("role", func(s string) bool { return rbac.Role(s).Valid() }); err != nil {
		panic(err)
	}
	return v
}

// LoadDirectory reads a YAML user directory from path.
func LoadDirectory(path string, opts ...DirectoryOption) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf(msgDirectoryReadFmt, path, err)
	}
	defer f.Close()
	return DecodeDirectory(f, opts...)
}

// DecodeDirectory parses the directory format:
//
//	users:
//	  - email: rita@example.com
//	    name: Rita
//	    role: recruiter
//	    password_hash: $2a$12$...
func DecodeDirectory(r io.Reader, opts ...DirectoryOption) (*Directory, error) {
	var file directoryFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf(msgDirectoryDecodeFmt, err)
	}
	return NewDirectory(file.Users, opts...)
}

// NewDirectory validates entries and builds a Directory.
func NewDirectory(entries []DirectoryEntry, opts ...DirectoryOption) (*Directory, error) {
	o := directoryOptions{cost: password.DefaultCost}
	for _, opt := range opts {
		opt(&o)
	}

	v := NewValidator()
	d := &Directory{users: make(map[string]directoryUser, len(entries))}
	for i, e := range entries {
		if err := v.Struct(e); err != nil {
			return nil, fmt.Errorf(msgDirectoryEntryFmt, i, err)
		}
		role, err := rbac.ParseRole(e.Role)
		if err != nil {
			return nil, fmt.Errorf(msgDirectoryEntryFmt, i, err)
		}

		email := normalizeEmail(e.Email)
		if _, exists := d.users[email]; exists {
			return nil, fmt.Errorf(msgDirectoryDuplicateFmt, email)
		}

		id := uuid.NewSHA1(directoryNamespace, []byte(email))
		if e.ID != "" {
			if id, err = uuid.Parse(e.ID); err != nil {
				return nil, fmt.Errorf(msgDirectoryBadIDFmt, i, err)
			}
		}

		d.users[email] = directoryUser{
			identity: session.Identity{
				ID:         id,
				Name:       e.Name,
				Email:      email,
				Role:       role,
				Department: e.Department,
			},
			hash: e.PasswordHash,
		}
	}

	dummy, err := password.HashWithCost(dummyPassword, o.cost)
	if err != nil {
		return nil, fmt.Errorf(msgDirectoryDummyHashFmt, err)
	}
	d.dummyHash = dummy

	return d, nil
}

// Len returns the number of users in the directory.
func (d *Directory) Len() int {
	return len(d.users)
}

// Identities returns every user in the directory ordered by name.
func (d *Directory) Identities() []session.Identity {
	out := make([]session.Identity, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u.identity)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Email < out[j].Email
	})
	return out
}

// Authenticate implements Authenticator. Unknown users still pay for a
// bcrypt comparison.
func (d *Directory) Authenticate(_ context.Context, creds Credentials) (*session.Identity, error) {
	user, found := d.users[normalizeEmail(creds.Email)]
	if !found {
		password.Verify(creds.Password, d.dummyHash)
		return nil, ErrInvalidCredentials
	}
	if !password.Verify(creds.Password, user.hash) {
		return nil, ErrInvalidCredentials
	}

	identity := user.identity
	return &identity, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
