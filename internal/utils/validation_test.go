package utils_test

import (
	"strings"
	"testing"

	"github.com/aalbahar80/rems-ai-sub000/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id, err := utils.ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	_, err = utils.ParseID("")
	assert.Equal(t, utils.ErrEmptyID, err)

	for _, raw := range []string{"abc", "-1", "0", "1.5", "1; DROP TABLE"} {
		_, err = utils.ParseID(raw)
		assert.Equal(t, utils.ErrInvalidIDFormat, err, raw)
	}
}

func TestTrimAndValidate(t *testing.T) {
	out, err := utils.TrimAndValidate("  Broken heater \x00 ", 50)
	require.NoError(t, err)
	assert.Equal(t, "Broken heater", out)

	_, err = utils.TrimAndValidate("   ", 50)
	assert.Equal(t, utils.ErrEmptyString, err)

	// 只含控制字符
	_, err = utils.TrimAndValidate("\x01\x02", 50)
	assert.Equal(t, utils.ErrEmptyString, err)
	_, err = utils.TrimAndValidate(" \x00 \x1b ", 50)
	assert.Equal(t, utils.ErrEmptyString, err)

	_, err = utils.TrimAndValidate(strings.Repeat("a", 11), 10)
	assert.Equal(t, utils.ErrStringTooLong, err)

	// 按字符计数
	out, err = utils.TrimAndValidate("مكيف معطل", 9)
	require.NoError(t, err)
	assert.Equal(t, "مكيف معطل", out)
}

func TestSanitizeString_KeepsNewlines(t *testing.T) {
	assert.Equal(t, "line1\nline2\tx", utils.SanitizeString("line1\nline2\tx\x07"))
}

func TestValidateSortField(t *testing.T) {
	allowed := []string{"created_at", "priority"}
	assert.NoError(t, utils.ValidateSortField("priority", allowed))
	assert.Error(t, utils.ValidateSortField("id; DROP TABLE maintenance_orders", allowed))
	assert.Error(t, utils.ValidateSortField("", allowed))
}

func TestNormalizeSortOrder(t *testing.T) {
	order, err := utils.NormalizeSortOrder("asc")
	require.NoError(t, err)
	assert.Equal(t, "ASC", order)

	order, err = utils.NormalizeSortOrder("")
	require.NoError(t, err)
	assert.Equal(t, "DESC", order)

	_, err = utils.NormalizeSortOrder("sideways")
	assert.Error(t, err)
}
