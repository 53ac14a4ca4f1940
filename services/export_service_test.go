package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteCSVRow_QuotesEveryField(t *testing.T) {
	var buf bytes.Buffer
	writeCSVRow(&buf, []string{"1", "user@example.com", "plain"})

	assert.Equal(t, "\"1\",\"user@example.com\",\"plain\"\n", buf.String())
}

func TestWriteCSVRow_DoublesInternalQuotes(t *testing.T) {
	var buf bytes.Buffer
	writeCSVRow(&buf, []string{`say "hi"`})

	assert.Equal(t, "\"say \"\"hi\"\"\"\n", buf.String())
}

func TestWriteCSVRow_EmptyFields(t *testing.T) {
	var buf bytes.Buffer
	writeCSVRow(&buf, []string{"", ""})

	assert.Equal(t, "\"\",\"\"\n", buf.String())
}

func TestJoinInts(t *testing.T) {
	assert.Equal(t, "1;2;3", joinInts([]int{1, 2, 3}))
	assert.Equal(t, "", joinInts(nil))
}
