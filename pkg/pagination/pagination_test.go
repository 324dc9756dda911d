package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	t.Parallel()

	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("zero limit = %d, want default %d", got, DefaultLimit)
	}
	if got := NormalizeLimit(-5); got != DefaultLimit {
		t.Fatalf("negative limit = %d, want default %d", got, DefaultLimit)
	}
	if got := NormalizeLimit(MaxLimit + 1); got != MaxLimit {
		t.Fatalf("oversized limit = %d, want cap %d", got, MaxLimit)
	}
	if got := NormalizeLimit(10); got != 10 {
		t.Fatalf("limit 10 = %d", got)
	}
	if got := LimitWithBuffer(10); got != 11 {
		t.Fatalf("buffered limit = %d, want 11", got)
	}
}

func TestCursorRoundTrip(t *testing.T) {
	t.Parallel()

	want := Cursor{CreatedAt: time.Now().UTC().Truncate(time.Microsecond), ID: uuid.New()}
	got, err := ParseCursor(EncodeCursor(want))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got == nil || !got.CreatedAt.Equal(want.CreatedAt) || got.ID != want.ID {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestParseCursorEmptyAndInvalid(t *testing.T) {
	t.Parallel()

	cursor, err := ParseCursor("   ")
	if err != nil || cursor != nil {
		t.Fatalf("blank cursor = %+v, %v; want nil, nil", cursor, err)
	}
	if _, err := ParseCursor("not-base64!!"); err == nil {
		t.Fatal("expected error for malformed token")
	}
	if _, err := ParseCursor("aGVsbG8="); err == nil {
		t.Fatal("expected error for token without separator")
	}
}
