package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"examportal/internal/model"
)

func TestStudentsWritesHeaderAndRows(t *testing.T) {
	out, err := Students([]model.Student{
		{ID: 2, Name: "Bo", Email: "bo@x.io", Phone: "556", ClassName: "10B", Result: 72.5, Mock: 60},
		{ID: 1, Name: "Ana", Email: "ana@x.io", Phone: "555", ClassName: "10A"},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"name", "email", "phone", "class_name", "result", "mock"}, rows[0])
	assert.Equal(t, []string{"Bo", "bo@x.io", "556", "10B", "72.5", "60"}, rows[1])
	assert.Equal(t, []string{"Ana", "ana@x.io", "555", "10A", "0", "0"}, rows[2])
}

func TestStudentsEmpty(t *testing.T) {
	out, err := Students(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
