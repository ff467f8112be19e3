package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `config: salt: "test-salt"`

const testSeed = `
products:
  - id: COLA
    name: Cola
    cost: 1.5
    initial_stock: 10
    cash_price: 10
    promos: [buy3]
  - id: STICKER
    name: Sticker
    cost: 0.5
    initial_stock: 20
    points_price: 2
promotions:
  - id: buy3
    name: Buy 3 get a point
    kind: quantity_based
    threshold: 3
    reward_points: 3
    member_only: true
customers:
  - id: alice
  - id: bob
    points: 6
`

// testShop writes a config and seed file into a temp dir and returns the
// global flags pointing at them.
func testShop(t *testing.T) (flags []string) {
	t.Helper()
	dir := t.TempDir()

	cfgPath := filepath.Join(dir, "shoplog.cue")
	require.NoError(t, os.WriteFile(cfgPath, []byte(testConfig), 0o644))

	seedPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(testSeed), 0o644))

	flags = []string{"--db", filepath.Join(dir, "shop.db"), "--config", cfgPath}

	out, err := execute(t, append([]string{"seed", seedPath}, flags...)...)
	require.NoError(t, err)
	require.Contains(t, out, "seeded 2 products, 1 promotions, 2 customers")

	return flags
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, err := execute(t, "stock", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"sell", "redeem", "refund", "adjust", "stock", "customers", "members", "verify", "lookup", "report", "seed"} {
		assert.Contains(t, names, want)
	}
}

func TestSell_TextReceipt(t *testing.T) {
	flags := testShop(t)

	out, err := execute(t, append([]string{"sell", "alice", "COLA", "2"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Cola x 2")
	assert.Contains(t, out, "paid cash:     20.00")
	assert.Contains(t, out, "stock left:    8")
	assert.Contains(t, out, "verify code:")
}

func TestSell_JSONReceipt(t *testing.T) {
	flags := testShop(t)

	out, err := execute(t, append([]string{"sell", "alice", "COLA", "2", "--format", "json"}, flags...)...)
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, 20.0, data["paid_cash"])
	assert.Equal(t, 8.0, data["stock_after"])
	assert.Len(t, data["verify_code"], 6)
}

func TestSell_RejectionExitCode(t *testing.T) {
	flags := testShop(t)

	out, err := execute(t, append([]string{"sell", "alice", "COLA", "99"}, flags...)...)
	require.Error(t, err)
	assert.Equal(t, ExitRejected, GetExitCode(err))
	assert.Contains(t, out, "REJECT_INSUFFICIENT_STOCK")
}

func TestSell_BadQuantityExitCode(t *testing.T) {
	flags := testShop(t)

	_, err := execute(t, append([]string{"sell", "alice", "COLA", "many"}, flags...)...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRedeem_DebitsPoints(t *testing.T) {
	flags := testShop(t)

	out, err := execute(t, append([]string{"redeem", "bob", "STICKER", "2"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "paid points:   4.00")

	out, err = execute(t, append([]string{"customers", "bob"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "2.00")
}

func TestStock_TextListing(t *testing.T) {
	flags := testShop(t)

	out, err := execute(t, append([]string{"stock"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "COLA")
	assert.Contains(t, out, "STICKER")

	out, err = execute(t, append([]string{"stock", "COLA"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "COLA")
	assert.NotContains(t, out, "STICKER")
}

func TestStock_UnknownProduct(t *testing.T) {
	flags := testShop(t)

	_, err := execute(t, append([]string{"stock", "GHOST"}, flags...)...)
	require.Error(t, err)
	assert.Equal(t, ExitRejected, GetExitCode(err))
}

func TestVerifyLookupRoundtrip(t *testing.T) {
	flags := testShop(t)

	out, err := execute(t, append([]string{"sell", "alice", "COLA", "2", "--format", "json"}, flags...)...)
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data := resp.Data.(map[string]interface{})
	orderID := data["order_id"].(string)
	code := data["verify_code"].(string)

	out, err = execute(t, append([]string{"verify", orderID}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, code)

	out, err = execute(t, append([]string{"lookup", code}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, orderID)
}

func TestRefundFlow(t *testing.T) {
	flags := testShop(t)

	out, err := execute(t, append([]string{"sell", "alice", "COLA", "3", "--format", "json"}, flags...)...)
	require.NoError(t, err)
	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	orderID := resp.Data.(map[string]interface{})["order_id"].(string)

	out, err = execute(t, append([]string{"refund", orderID, "1", "--preview"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "refund cash:   10.00 (record only)")

	out, err = execute(t, append([]string{"refund", orderID, "1", "--reason", "opened by mistake"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "refund:")

	out, err = execute(t, append([]string{"stock", "COLA"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "available    8")
}

func TestMissingConfigExitCode(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "stock", "--db", filepath.Join(dir, "shop.db"), "--config", filepath.Join(dir, "absent.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestAdjustBudgetAndReport(t *testing.T) {
	flags := testShop(t)

	_, err := execute(t, append([]string{"adjust", "budget", "100", "--reason", "term funding"}, flags...)...)
	require.NoError(t, err)
	_, err = execute(t, append([]string{"adjust", "budget", "--", "-30", "--reason", "posters"}, flags...)...)
	require.NoError(t, err)

	out, err := execute(t, append([]string{"report", "budget"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "70.00")
}
