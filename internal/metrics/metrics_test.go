package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordBackend(t *testing.T) {
	before := testutil.ToFloat64(BackendRequests.WithLabelValues("image", "timeout"))
	RecordBackend("image", "timeout", 3)
	after := testutil.ToFloat64(BackendRequests.WithLabelValues("image", "timeout"))
	if after-before != 1 {
		t.Fatalf("counter delta %v", after-before)
	}
}

func TestRecordTokens(t *testing.T) {
	in := testutil.ToFloat64(TokensTotal.WithLabelValues("m", "in"))
	out := testutil.ToFloat64(TokensTotal.WithLabelValues("m", "out"))
	RecordTokens("m", 12, 30)
	if d := testutil.ToFloat64(TokensTotal.WithLabelValues("m", "in")) - in; d != 12 {
		t.Fatalf("in delta %v", d)
	}
	if d := testutil.ToFloat64(TokensTotal.WithLabelValues("m", "out")) - out; d != 30 {
		t.Fatalf("out delta %v", d)
	}
}
