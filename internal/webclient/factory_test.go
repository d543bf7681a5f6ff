package webclient_test

import (
	"strings"
	"testing"

	"github.com/raysh454/vertex/internal/testutil"
	"github.com/raysh454/vertex/internal/webclient"
)

func TestNewWebClient_DefaultsToNetHTTP(t *testing.T) {
	t.Parallel()

	wc, err := webclient.NewWebClient(webclient.Config{}, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewWebClient: %v", err)
	}
	defer wc.Close()
	if _, ok := wc.(*webclient.NetHTTPClient); !ok {
		t.Fatalf("got %T, want *webclient.NetHTTPClient", wc)
	}
}

func TestNewWebClient_Chromedp(t *testing.T) {
	t.Parallel()

	wc, err := webclient.NewWebClient(webclient.Config{Client: "ChromeDP"}, &testutil.DummyLogger{})
	if err != nil {
		t.Fatalf("NewWebClient: %v", err)
	}
	defer wc.Close()
	if _, ok := wc.(*webclient.ChromedpClient); !ok {
		t.Fatalf("got %T, want *webclient.ChromedpClient", wc)
	}
}

func TestNewWebClient_UnknownBackend(t *testing.T) {
	t.Parallel()

	_, err := webclient.NewWebClient(webclient.Config{Client: "unknown"}, &testutil.DummyLogger{})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if !strings.Contains(err.Error(), "not registered") {
		t.Errorf("error = %v", err)
	}
}

func TestListBackends(t *testing.T) {
	t.Parallel()

	got := strings.Join(webclient.ListBackends(), ",")
	if !strings.Contains(got, "chromedp") || !strings.Contains(got, "nethttp") {
		t.Fatalf("ListBackends = %q", got)
	}
}
