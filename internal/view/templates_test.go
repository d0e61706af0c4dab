package view

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestHomePageCarriesCSRFToken(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = engine.Execute(&buf, "pages/home.html", TemplateData{
		Title:     "Records",
		CSRFToken: "tok",
		Data:      map[string]any{"Page": "/admin/inventory"},
	})
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(buf.String()))
	require.NoError(t, err)
	token, ok := doc.Find(`meta[name="csrf-token"]`).Attr("content")
	require.True(t, ok)
	assert.Equal(t, "tok", token)
	assert.Equal(t, 2, doc.Find(`input[name="page"][value="/admin/inventory"]`).Length())
	assert.Equal(t, 1, doc.Find("#managerToast").Length())
	assert.Equal(t, 1, doc.Find(`script[src="/static/js/manager.js"]`).Length())
}
