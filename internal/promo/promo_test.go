package promo

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"orderdesk/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gzipLines(t *testing.T, lines []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	for _, l := range lines {
		_, err := gz.Write([]byte(l + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func writePromoFile(t *testing.T, dir, name string, codes []string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, gzipLines(t, codes), 0o600))
	return path
}

func TestSet(t *testing.T) {
	s := NewSet(4)
	s.Add(" summer2025 ")
	s.Add("SUMMER2025")
	s.Add("WINTER99XX")

	assert.Equal(t, 2, s.Size())
	assert.True(t, s.Contains("Summer2025"))
	assert.False(t, s.Contains("AUTUMN2025"))
}

func TestFileLoader_Load(t *testing.T) {
	dir := t.TempDir()
	path := writePromoFile(t, dir, "codes.gz", []string{"CODE0001", "", "  code0002  ", "CODE0001"})

	set, err := NewFileLoader(zerolog.Nop()).Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 2, set.Size())
	assert.True(t, set.Contains("CODE0002"))
}

func TestFileLoader_Load_Errors(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "missing.gz"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open promo file")

	plain := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(plain, []byte("not gzip"), 0o600))
	_, err = loader.Load(context.Background(), plain)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gzip")
}

func TestFileLoader_Load_Cancelled(t *testing.T) {
	path := writePromoFile(t, t.TempDir(), "codes.gz", []string{"CODE0001"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileLoader(zerolog.Nop()).Load(ctx, path)

	require.ErrorIs(t, err, context.Canceled)
}

type fakeS3 struct {
	objects map[string][]byte
	keys    []string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	key := aws.ToString(in.Key)
	f.keys = append(f.keys, key)
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func TestS3Loader_Load(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{
		"promos/a.gz": gzipLines(t, []string{"S3CODE001", "S3CODE002"}),
	}}
	loader := NewS3LoaderWithClient(client, "bucket", zerolog.Nop())

	set, err := loader.Load(context.Background(), "promos/a.gz")
	require.NoError(t, err)
	assert.Equal(t, 2, set.Size())

	_, err = loader.Load(context.Background(), "promos/missing.gz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket=bucket")
}

func TestFallbackLoader(t *testing.T) {
	dir := t.TempDir()
	local := writePromoFile(t, dir, "b.gz", []string{"LOCAL0001"})

	client := &fakeS3{objects: map[string][]byte{
		"promos/a.gz": gzipLines(t, []string{"REMOTE001"}),
	}}
	primary := NewS3LoaderWithClient(client, "bucket", zerolog.Nop())
	loader := NewFallbackLoader(primary, NewFileLoader(zerolog.Nop()), "promos/", zerolog.Nop())

	set, err := loader.Load(context.Background(), filepath.Join(dir, "a.gz"))
	require.NoError(t, err)
	assert.True(t, set.Contains("REMOTE001"))

	set, err = loader.Load(context.Background(), local)
	require.NoError(t, err)
	assert.True(t, set.Contains("LOCAL0001"))
	assert.Equal(t, "promos/b.gz", client.keys[len(client.keys)-1])
}

func TestFallbackLoader_LocalOnly(t *testing.T) {
	path := writePromoFile(t, t.TempDir(), "a.gz", []string{"LOCAL0001"})
	loader := NewFallbackLoader(nil, NewFileLoader(zerolog.Nop()), "promos/", zerolog.Nop())

	set, err := loader.Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 1, set.Size())
}

func newTestValidator(t *testing.T, minMatch int) Validator {
	t.Helper()
	dir := t.TempDir()
	files := []string{
		writePromoFile(t, dir, "1.gz", []string{"COMMON1234", "ONLYONE001", "TWOOFTHREE"}),
		writePromoFile(t, dir, "2.gz", []string{"COMMON1234", "TWOOFTHREE", "SHORT"}),
		writePromoFile(t, dir, "3.gz", []string{"COMMON1234", "SHORT"}),
	}
	v, err := NewValidator(context.Background(), ValidatorConfig{Files: files, MinMatchCount: minMatch}, NewFileLoader(zerolog.Nop()), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = v.Close() })
	return v
}

func TestValidator_Validate(t *testing.T) {
	v := newTestValidator(t, 2)
	ctx := context.Background()

	tests := []struct {
		name      string
		code      string
		expectErr error
	}{
		{name: "In all three lists", code: "COMMON1234", expectErr: nil},
		{name: "In two lists", code: "TWOOFTHREE", expectErr: nil},
		{name: "Case and whitespace ignored", code: " twoofthree ", expectErr: nil},
		{name: "In one list", code: "ONLYONE001", expectErr: model.ErrInvalidPromoCode},
		{name: "Unknown", code: "NOPE123456", expectErr: model.ErrInvalidPromoCode},
		{name: "Too short", code: "SHORT", expectErr: model.ErrInvalidPromoLength},
		{name: "Too long", code: "ABCDEFGHIJK", expectErr: model.ErrInvalidPromoLength},
		{name: "Empty", code: "", expectErr: model.ErrInvalidPromoLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(ctx, tt.code)
			if tt.expectErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expectErr)
			}
		})
	}
}

func TestValidator_MinMatchCount(t *testing.T) {
	v := newTestValidator(t, 3)

	assert.NoError(t, v.Validate(context.Background(), "COMMON1234"))
	assert.ErrorIs(t, v.Validate(context.Background(), "TWOOFTHREE"), model.ErrInvalidPromoCode)
}

func TestNewValidator_Errors(t *testing.T) {
	loader := NewFileLoader(zerolog.Nop())

	_, err := NewValidator(context.Background(), ValidatorConfig{Files: []string{"/nonexistent/a.gz", "/nonexistent/b.gz"}}, loader, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load promo file")

	_, err = NewValidator(context.Background(), ValidatorConfig{Files: []string{"a.gz"}, MinMatchCount: 2}, loader, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}
