package i18n

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateSpanish(t *testing.T) {
	ctx := initLang(t, "es")

	got := T(ctx, "ReportTitle")
	if got != "Informe de progreso" {
		t.Errorf("T(ReportTitle) = %q, want 'Informe de progreso'", got)
	}

	got = T(ctx, "ErrInvalidKey")
	if got != "La clave de API no es válida. Revísala y reinicia el servidor." {
		t.Errorf("T(ErrInvalidKey) = %q", got)
	}
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	got := T(ctx, "ReportTitle")
	if got != "Progress report" {
		t.Errorf("T(ReportTitle) = %q, want 'Progress report'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	tests := []struct {
		lang  string
		count int
		want  string
	}{
		{"es", 1, "1 tema"},
		{"es", 3, "3 temas"},
		{"en", 1, "1 topic"},
		{"en", 0, "0 topics"},
	}
	for _, tt := range tests {
		ctx := initLang(t, tt.lang)
		if got := Tp(ctx, "TopicsCount", tt.count); got != tt.want {
			t.Errorf("[%s] Tp(TopicsCount, %d) = %q, want %q", tt.lang, tt.count, got, tt.want)
		}
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "es")

	got := Td(ctx, "ErrGateway", map[string]any{"Detail": "connection refused"})
	if got != "Error al contactar la IA: connection refused" {
		t.Errorf("Td(ErrGateway) = %q", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "es")

	got := T(ctx, "NonExistentKey")
	if got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestDefaultLocalizerWithoutContext(t *testing.T) {
	initLang(t, "en")

	got := T(context.Background(), "ReportBack")
	if got != "Volver al panel" {
		t.Errorf("T(ReportBack) without localizer = %q, want Spanish default", got)
	}
}

func TestLocalesDefineSameMessages(t *testing.T) {
	read := func(name string) map[string]any {
		data, err := localeFS.ReadFile("locales/" + name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		return m
	}
	es, en := read("es.json"), read("en.json")
	for id := range es {
		if _, ok := en[id]; !ok {
			t.Errorf("message %q missing from en.json", id)
		}
	}
	for id := range en {
		if _, ok := es[id]; !ok {
			t.Errorf("message %q missing from es.json", id)
		}
	}
}

func TestMiddleware(t *testing.T) {
	initLang(t, "es")

	var got string
	h := Middleware("en")(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "ReportPrint")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != "Print" {
		t.Errorf("configured language should win, got %q", got)
	}
}

func TestInitRejectsMissingLocale(t *testing.T) {
	if err := Init("fr"); err == nil {
		t.Fatal("Init(fr) succeeded without a French locale")
	}
	if err := Init("not a tag"); err == nil {
		t.Fatal("Init accepted an invalid tag")
	}
	initLang(t, "es")
	got := Languages()
	if len(got) != 2 || !contains(got, "es") || !contains(got, "en") {
		t.Errorf("Languages() = %v, want es and en", got)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
