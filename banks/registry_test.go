package banks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRegistry() *Registry {
	return NewDefaultRegistry(map[string]Credentials{
		ProviderHDFC:  {APISecret: "h"},
		ProviderICICI: {APISecret: "i"},
		ProviderKotak: {APISecret: "k"},
		ProviderAxis:  {APISecret: "a"},
	}, testLogger())
}

func TestResolveKnownProviders(t *testing.T) {
	r := testRegistry()

	for _, name := range []string{ProviderHDFC, ProviderICICI, ProviderKotak, ProviderAxis} {
		assert.Equal(t, name, r.Resolve(name).Name())
	}
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	r := testRegistry()

	assert.Equal(t, ProviderHDFC, r.Resolve("hdfc").Name())
	assert.Equal(t, ProviderICICI, r.Resolve(" Icici ").Name())
	assert.Equal(t, ProviderKotak, r.Resolve("kotak").Name())
}

func TestResolveUnknownFallsBackToDefault(t *testing.T) {
	r := testRegistry()

	assert.Equal(t, DefaultProvider, r.Resolve("").Name())
	assert.Equal(t, DefaultProvider, r.Resolve("SBI").Name())
	assert.Equal(t, ProviderAxis, DefaultProvider)
}

func TestKnown(t *testing.T) {
	r := testRegistry()

	assert.True(t, r.Known("axis"))
	assert.True(t, r.Known("HDFC"))
	assert.False(t, r.Known("SBI"))
	assert.False(t, r.Known(""))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Axis Bank", DisplayName("axis"))
	assert.Equal(t, "HDFC Bank", DisplayName("HDFC"))
	assert.Equal(t, "SBI", DisplayName("SBI"))
}

func TestParseWebhookPerProviderSchemas(t *testing.T) {
	cases := []struct {
		provider string
		payload  string
		txnID    string
		status   string
	}{
		{ProviderHDFC, `{"transaction_id":"HDFC_1","status":"SUCCESS"}`, "HDFC_1", "SUCCESS"},
		{ProviderICICI, `{"bank_reference_no":"ICICI_1","transaction_status":"FAILED"}`, "ICICI_1", "FAILED"},
		{ProviderKotak, `{"transactionId":"KOTAK_1","status":"COMPLETED"}`, "KOTAK_1", "COMPLETED"},
		{ProviderAxis, `{"txnId":"AXIS_1","txnStatus":"SUCCESS"}`, "AXIS_1", "SUCCESS"},
	}

	for _, tc := range cases {
		event, err := ParseWebhook(tc.provider, []byte(tc.payload))
		assert.NoError(t, err, tc.provider)
		assert.Equal(t, tc.txnID, event.BankTransactionID, tc.provider)
		assert.Equal(t, tc.status, event.Status, tc.provider)
	}
}

func TestParseWebhookRejectsMissingFields(t *testing.T) {
	_, err := ParseWebhook(ProviderAxis, []byte(`{"txnId":"AXIS_1"}`))
	assert.Error(t, err)

	_, err = ParseWebhook(ProviderAxis, []byte(`not json`))
	assert.Error(t, err)

	_, err = ParseWebhook("SBI", []byte(`{}`))
	assert.Error(t, err)
}
