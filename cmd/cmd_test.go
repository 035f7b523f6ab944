package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hosseinjeff/Wholesale-project/infrastructure/jwt"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cfgFile = ""
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRoot_ListsCommands(t *testing.T) {
	out, err := run(t, "", "--help")
	require.NoError(t, err)
	for _, name := range []string{"serve", "extract", "replay", "export", "migrate", "backfill", "token"} {
		assert.Contains(t, out, name)
	}
}

func TestExtract_RendersTable(t *testing.T) {
	text := "انرژی زا هایپ اصلی\n✅در باکس ۲۴عددی\n✅قیمت هر باکس: ۱,۲۰۰,۰۰۰ تومان\n✅قیمت مصرف: ۶۵,۰۰۰ تومان"
	out, err := run(t, text, "extract", "--username", "@top_shop_rahimi")
	require.NoError(t, err)
	assert.Contains(t, out, "انرژی زا هایپ اصلی")
	assert.Contains(t, out, "1200000")
	assert.Contains(t, out, "65000")
}

func TestExtract_JSONFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msg.txt")
	require.NoError(t, os.WriteFile(path, []byte("Smart Watch W8\n1,900,000 تومان"), 0o600))

	out, err := run(t, "", "extract", "--json", "--username", "@gadgets", path)
	require.NoError(t, err)

	var res struct {
		Records []struct {
			Name      string `json:"name"`
			SalePrice int64  `json:"sale_price"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Smart Watch W8", res.Records[0].Name)
	assert.Equal(t, int64(1900000), res.Records[0].SalePrice)
}

func TestExtract_NoProducts(t *testing.T) {
	out, err := run(t, "سلام به همه دوستان", "extract")
	require.NoError(t, err)
	assert.Contains(t, out, "No products found")
}

func TestExtract_MissingFile(t *testing.T) {
	_, err := run(t, "", "extract", filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}

func TestToken_IssuesVerifiableToken(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  jwt_secret: s3cret\n"), 0o600))

	out, err := run(t, "", "--config", path, "token", "--subject", "ops")
	require.NoError(t, err)

	claims, err := jwt.Parse("s3cret", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Sub)
}

func TestToken_RequiresSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("service:\n  name: wholesale\n"), 0o600))

	_, err := run(t, "", "--config", path, "token")
	require.Error(t, err)
}
