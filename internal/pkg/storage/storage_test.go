package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// minimalPDF builds a one-page PDF with a correct xref table.
func minimalPDF() []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type memBackend struct {
	keys  []string
	types []string
}

func (b *memBackend) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	b.keys = append(b.keys, key)
	b.types = append(b.types, contentType)
	return "/uploads/" + key, nil
}

func newTestManager() (*Manager, *memBackend) {
	backend := &memBackend{}
	m := NewManager(backend)
	m.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return m, backend
}

func TestSave_ResumePDF(t *testing.T) {
	m, backend := newTestManager()

	ref, err := m.Save(context.Background(), KindResume, File{Name: "cv.pdf", Body: bytes.NewReader(minimalPDF())})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(ref, "/uploads/1700000000000-") || !strings.HasSuffix(ref, ".pdf") {
		t.Fatalf("unexpected reference %q", ref)
	}
	if backend.types[0] != "application/pdf" {
		t.Fatalf("unexpected content type %q", backend.types[0])
	}
}

func TestSave_RejectsBrokenPDF(t *testing.T) {
	m, _ := newTestManager()

	_, err := m.Save(context.Background(), KindResume, File{Name: "cv.pdf", Body: strings.NewReader("%PDF-1.4\nnot really a pdf")})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestSave_RejectsWrongType(t *testing.T) {
	m, _ := newTestManager()

	_, err := m.Save(context.Background(), KindPhoto, File{Name: "notes.txt", Body: strings.NewReader("plain text, not an image")})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestSave_RejectsOversize(t *testing.T) {
	m, _ := newTestManager()

	data := append(append([]byte{}, pngHeader...), make([]byte, Policies[KindPhoto].MaxBytes)...)
	_, err := m.Save(context.Background(), KindPhoto, File{Name: "big.png", Body: bytes.NewReader(data)})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestSave_PhotoPNG(t *testing.T) {
	m, _ := newTestManager()

	ref, err := m.Save(context.Background(), KindPhoto, File{Name: "me.png", Body: bytes.NewReader(pngHeader)})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(ref, ".png") {
		t.Fatalf("unexpected reference %q", ref)
	}
}

func TestLocalBackend_Put(t *testing.T) {
	dir := t.TempDir()
	b, err := NewLocalBackend(filepath.Join(dir, "uploads"), "/uploads/")
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	ref, err := b.Put(context.Background(), "a.png", "image/png", pngHeader)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if ref != "/uploads/a.png" {
		t.Fatalf("unexpected reference %q", ref)
	}
	got, err := os.ReadFile(filepath.Join(dir, "uploads", "a.png"))
	if err != nil || !bytes.Equal(got, pngHeader) {
		t.Fatalf("file not written: %v", err)
	}
}

type fakePutter struct {
	in  *s3.PutObjectInput
	err error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Backend_Put(t *testing.T) {
	putter := &fakePutter{}
	b := &S3Backend{client: putter, bucket: "joblink", publicURL: "https://cdn.test/joblink"}

	ref, err := b.Put(context.Background(), "k.png", "image/png", pngHeader)
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if ref != "https://cdn.test/joblink/k.png" {
		t.Fatalf("unexpected reference %q", ref)
	}
	if aws.ToString(putter.in.Bucket) != "joblink" || aws.ToString(putter.in.ContentType) != "image/png" {
		t.Fatalf("unexpected input %+v", putter.in)
	}

	putter.err = errors.New("denied")
	if _, err := b.Put(context.Background(), "k.png", "image/png", pngHeader); err == nil {
		t.Fatalf("expected error")
	}
}
