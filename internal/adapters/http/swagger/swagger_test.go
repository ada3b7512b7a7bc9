package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/smartystreets/goconvey/convey"
)

// reportPaths are the endpoints backed by the schedule feed.
var reportPaths = []string{"/flights", "/delays", "/clusters", "/best-hours", "/surge", "/summary", "/refresh"}

// dig walks nested YAML maps and returns nil when any key is missing.
func dig(doc map[string]interface{}, keys ...string) interface{} {
	var cur interface{} = doc
	for _, k := range keys {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = m[k]
	}
	return cur
}

func stringList(v interface{}) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func TestOpenAPIDocument(t *testing.T) {
	convey.Convey("Given the served OpenAPI document", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")

		doc, err := yaml.Parser().Unmarshal(w.Body.Bytes())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then every report endpoint declares the 503 unavailable reply", func() {
			for _, path := range reportPaths {
				method := "get"
				if path == "/refresh" {
					method = "post"
				}
				ref := dig(doc, "paths", path, method, "responses", "503", "$ref")
				convey.So(ref, convey.ShouldEqual, "#/components/responses/Unavailable")
				convey.So(dig(doc, "paths", path, method, "responses", "404", "$ref"),
					convey.ShouldEqual, "#/components/responses/NotFound")
			}
		})

		convey.Convey("Then refresh is POST only", func() {
			convey.So(dig(doc, "paths", "/refresh", "post"), convey.ShouldNotBeNil)
			convey.So(dig(doc, "paths", "/refresh", "get"), convey.ShouldBeNil)
		})

		convey.Convey("Then error replies share the code and message shape", func() {
			for _, name := range []string{"BadRequest", "NotFound", "Unavailable"} {
				ref := dig(doc, "components", "responses", name, "content", "application/json", "schema", "$ref")
				convey.So(ref, convey.ShouldEqual, "#/components/schemas/Error")
			}
			convey.So(stringList(dig(doc, "components", "schemas", "Error", "required")),
				convey.ShouldResemble, []string{"code", "message"})
		})

		convey.Convey("Then freshness exposes the stale flag and warning", func() {
			props := dig(doc, "components", "schemas", "Freshness", "properties")
			convey.So(props, convey.ShouldContainKey, "snapshot_id")
			convey.So(props, convey.ShouldContainKey, "as_of")
			convey.So(props, convey.ShouldContainKey, "stale")
			convey.So(props, convey.ShouldContainKey, "warning")
		})

		convey.Convey("Then flights carry zone and curbside time", func() {
			convey.So(stringList(dig(doc, "components", "schemas", "Flight", "properties", "zone", "enum")),
				convey.ShouldResemble, []string{"AB", "C", "Unknown"})
			convey.So(dig(doc, "components", "schemas", "Flight", "properties", "ready_at", "format"),
				convey.ShouldEqual, "date-time")
		})

		convey.Convey("Then surge levels and the direction filter are enumerated", func() {
			level := dig(doc, "paths", "/surge", "get", "responses", "200", "content", "application/json",
				"schema", "allOf")
			parts, _ := level.([]interface{})
			convey.So(parts, convey.ShouldHaveLength, 2)
			obj, _ := parts[1].(map[string]interface{})
			convey.So(stringList(dig(obj, "properties", "level", "enum")),
				convey.ShouldResemble, []string{"Low", "Moderate", "High"})
			convey.So(stringList(dig(doc, "components", "parameters", "direction", "schema", "enum")),
				convey.ShouldResemble, []string{"arrival", "departure"})
		})
	})
}

func TestDocsPage(t *testing.T) {
	convey.Convey("Given the docs page", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)

		req := httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		convey.Convey("Then ReDoc is pointed at the served document", func() {
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "curbcast API Docs")
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "Redoc.init('/openapi.yaml'")
		})
	})
}

func TestRegisterNilMux(t *testing.T) {
	convey.Convey("Given a nil mux", t, func() {
		convey.So(func() { Register(context.Background(), nil) }, convey.ShouldPanic)
	})
}
