package receipt

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "finitefield.org/pen-checkout/internal/domain"
)

type recordingSink struct {
	bodies [][]byte
	err    error
}

func (s *recordingSink) Write(_ context.Context, order domain.Order, body []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.bodies = append(s.bodies, body)
	return "memory://" + order.ID, nil
}

func TestFileSinkCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recibos", "2024", "recibo_compra.txt")
	sink, err := NewFileSink(path)
	require.NoError(t, err)

	location, err := sink.Write(context.Background(), domain.Order{}, []byte("primeiro"))
	require.NoError(t, err)
	assert.Equal(t, path, location)

	_, err = sink.Write(context.Background(), domain.Order{}, []byte("segundo"))
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "segundo", string(raw))
}

func TestNewFileSinkRequiresPath(t *testing.T) {
	_, err := NewFileSink("  ")
	assert.Error(t, err)
}

func TestIssuerRendersAndStores(t *testing.T) {
	sink := &recordingSink{}
	var events []string
	issuer, err := NewIssuer(IssuerDeps{
		Sink: sink,
		Logger: func(_ context.Context, name string, _ map[string]any) {
			events = append(events, name)
		},
	})
	require.NoError(t, err)

	order := sampleOrder(t)
	location, err := issuer.Issue(context.Background(), order)
	require.NoError(t, err)

	assert.Equal(t, "memory://01HXORDER", location)
	require.Len(t, sink.bodies, 1)
	assert.Equal(t, issuer.Formatter().Render(order), string(sink.bodies[0]))
	assert.Equal(t, []string{"receipt_issued"}, events)
}

func TestIssuerPropagatesSinkErrors(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	issuer, err := NewIssuer(IssuerDeps{Sink: sink})
	require.NoError(t, err)

	_, err = issuer.Issue(context.Background(), sampleOrder(t))
	assert.EqualError(t, err, "disk full")

	_, err = NewIssuer(IssuerDeps{})
	assert.Error(t, err)
}
