package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"metagrip/internal/domain"
)

const purchaseSchema = `{"type":"record","name":"etlSchemaBody","fields":[
	{"name":"ts","type":"long"},
	{"name":"body","type":"string"},
	{"name":"customer","type":["string","null"]}
]}`

func TestOptionsFollowFirstSchema(t *testing.T) {
	sel := New([]domain.InputSchema{
		{Name: "source", Schema: purchaseSchema},
		{Name: "other", Schema: `{"fields":[{"name":"ignored"}]}`},
	}, nil)

	assert.Equal(t, []string{"ts", "body", "customer"}, sel.Options())
	assert.Empty(t, sel.Value())
}

func TestNoSchemasMeansNoOptions(t *testing.T) {
	assert.Empty(t, New(nil, nil).Options())
}

func TestMalformedSchemaIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	sel := New([]domain.InputSchema{{Name: "source", Schema: "{not json"}}, zap.New(core))

	assert.Empty(t, sel.Options())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "invalid input schema", logs.All()[0].Message)
}

func TestSelect(t *testing.T) {
	sel := New([]domain.InputSchema{{Schema: purchaseSchema}}, nil)

	require.NoError(t, sel.Select("body"))
	assert.Equal(t, "body", sel.Value())

	err := sel.Select("price")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Equal(t, "body", sel.Value())
}
