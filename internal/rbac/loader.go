package rbac

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const s3Scheme = "s3://"

// ObjectFetcher reads a whole object from a bucket
type ObjectFetcher interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

type tableFile struct {
	Roles []roleEntry `yaml:"roles"`
}

type roleEntry struct {
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

// LoadConfig reads a permission table from a local path or an s3://bucket/key URI.
// fetcher may be nil when source is a local path.
func LoadConfig(ctx context.Context, source string, fetcher ObjectFetcher) (Config, error) {
	data, err := readSource(ctx, source, fetcher)
	if err != nil {
		return Config{}, fmt.Errorf(errLoadReadSourceFmt, source, err)
	}

	cfg, err := DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Config{}, fmt.Errorf(errLoadDecodeFmt, source, err)
	}
	return cfg, nil
}

// DecodeConfig parses the YAML table format. Unknown fields, roles, actions
// and subjects are all rejected here rather than reaching the checker.
func DecodeConfig(r io.Reader) (Config, error) {
	var file tableFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return Config{}, err
	}

	cfg := Config{Grants: make(map[Role][]Permission, len(file.Roles))}
	for _, entry := range file.Roles {
		role, err := ParseRole(entry.Name)
		if err != nil {
			return Config{}, fmt.Errorf(errLoadRoleFmt, err)
		}
		cfg.Roles = append(cfg.Roles, role)
		perms := make([]Permission, 0, len(entry.Permissions))
		for _, raw := range entry.Permissions {
			p, err := ParsePermission(raw)
			if err != nil {
				return Config{}, fmt.Errorf(errLoadPermissionFmt, role, err)
			}
			perms = append(perms, p)
		}
		cfg.Grants[role] = perms
	}

	return cfg, cfg.Validate()
}

// EncodeConfig writes t in the same format DecodeConfig reads.
func EncodeConfig(w io.Writer, t *Table) error {
	file := tableFile{Roles: make([]roleEntry, 0, len(t.roles))}
	for _, e := range t.Entries() {
		perms := make([]string, 0, len(e.Permissions))
		for _, p := range e.Permissions {
			perms = append(perms, p.String())
		}
		file.Roles = append(file.Roles, roleEntry{Name: string(e.Role), Permissions: perms})
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(file)
}

func readSource(ctx context.Context, source string, fetcher ObjectFetcher) ([]byte, error) {
	if !strings.HasPrefix(source, s3Scheme) {
		return os.ReadFile(source)
	}
	bucket, key, err := splitS3URI(source)
	if err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, fmt.Errorf(errLoadS3Missing)
	}
	return fetcher.GetObject(ctx, bucket, key)
}

func splitS3URI(uri string) (string, string, error) {
	bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, s3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf(errLoadS3URIFmt, uri)
	}
	return bucket, key, nil
}
