package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/song-sponsorship/internal/utils"
)

func TestHashPasswordCommand(t *testing.T) {
	cmd := hashPasswordCommand()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader("geheim\n"))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--cost", "4"})
	require.NoError(t, cmd.Execute())
	assert.True(t, utils.VerifyPassword(strings.TrimSpace(out.String()), "geheim"))
}

func TestImportThenExport(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "test.db"))

	imp := importCommand()
	var out bytes.Buffer
	imp.SetIn(strings.NewReader("name,komponist,anzahl,preis,gesamtpreis,besetzung\n" +
		`"Lied A","Komponist X",3,"2.50 €","7.50 €","SATB"` + "\n"))
	imp.SetOut(&out)
	imp.SetArgs([]string{"-"})
	require.NoError(t, imp.Execute())
	assert.Equal(t, "1 Songs erfolgreich erstellt\n", out.String())

	exp := exportCommand()
	out.Reset()
	exp.SetOut(&out)
	exp.SetArgs([]string{"--songs"})
	require.NoError(t, exp.Execute())
	assert.Contains(t, out.String(), `"Lied A","Komponist X","3","2.5","7.5","SATB"`)
}

func TestMigrateCommand(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "migrate.db"))
	t.Setenv("APP_ENV", "test")

	cmd := migrateCommand()
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())
}
