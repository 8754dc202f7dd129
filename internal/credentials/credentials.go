package credentials

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Credentials holds static S3 credentials for the s3 store backend
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// NewCredentials creates an empty credentials instance
func NewCredentials() *Credentials {
	return &Credentials{}
}

// LoadFromPasswdFile loads credentials from a passwd file. Each non-comment
// line is either ACCESS_KEY:SECRET_KEY or BUCKET:ACCESS_KEY:SECRET_KEY; a
// line naming bucket wins over a bucket-less line. The file must not be
// readable by group or others.
func (c *Credentials) LoadFromPasswdFile(path, bucket string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to read passwd file: %w", err)
	}
	if info.Mode().Perm()&0077 != 0 {
		return fmt.Errorf("passwd file %s must not be accessible by group or others (mode %04o)", path, info.Mode().Perm())
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read passwd file: %w", err)
	}
	defer f.Close()

	var fallback, match []string
	scanner := bufio.NewScanner(f)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ":")
		switch len(parts) {
		case 2:
			if fallback == nil {
				fallback = parts
			}
		case 3:
			if bucket != "" && strings.TrimSpace(parts[0]) == bucket {
				match = parts[1:]
			}
		default:
			return fmt.Errorf("invalid passwd file format at line %d, expected [BUCKET:]ACCESS_KEY:SECRET_KEY", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read passwd file: %w", err)
	}

	chosen := match
	if chosen == nil {
		chosen = fallback
	}
	if chosen == nil {
		return fmt.Errorf("no credentials for bucket %q in %s", bucket, path)
	}

	c.AccessKeyID = strings.TrimSpace(chosen[0])
	c.SecretAccessKey = strings.TrimSpace(chosen[1])
	return nil
}

// LoadFromEnvironment reads AMBRYFS_S3_ACCESS_KEY_ID / AMBRYFS_S3_SECRET_ACCESS_KEY,
// falling back to the standard AWS variables.
func (c *Credentials) LoadFromEnvironment() error {
	accessKey := firstEnv("AMBRYFS_S3_ACCESS_KEY_ID", "AWS_ACCESS_KEY_ID")
	secretKey := firstEnv("AMBRYFS_S3_SECRET_ACCESS_KEY", "AWS_SECRET_ACCESS_KEY")
	if accessKey == "" || secretKey == "" {
		return fmt.Errorf("AMBRYFS_S3_ACCESS_KEY_ID and AMBRYFS_S3_SECRET_ACCESS_KEY (or the AWS_ equivalents) must be set")
	}

	c.AccessKeyID = accessKey
	c.SecretAccessKey = secretKey
	c.SessionToken = firstEnv("AMBRYFS_S3_SESSION_TOKEN", "AWS_SESSION_TOKEN")
	return nil
}

// IsValid checks that both access key and secret are set
func (c *Credentials) IsValid() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
