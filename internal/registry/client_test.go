package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const registryPage = `<html><body>
<table class="table-bordered">
<tr><th>№</th><th>Наименование</th><th>ИНН</th><th>Дата вступления</th><th>Статус</th></tr>
<tr>
  <td>1</td>
  <td>ООО "СтройМонтаж"</td>
  <td>5260123456</td>
  <td>12.03.2019</td>
  <td>Член СРО</td>
</tr>
<tr>
  <td>2</td>
  <td>АО "Волга-Строй"</td>
  <td>5261987654</td>
  <td>01.07.2021</td>
  <td>Исключен</td>
</tr>
</table>
</body></html>`

func newRegistryServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, zap.NewNop())
}

func TestCheckMembershipActiveMember(t *testing.T) {
	client := newRegistryServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5260123456", r.URL.Query().Get("arrFilter_pf[INNNumber]"))
		assert.Equal(t, "Y", r.URL.Query().Get("set_filter"))
		assert.Equal(t, "Y", r.URL.Query().Get("EXACT_MATCH_1"))
		w.Write([]byte(registryPage))
	})

	m, err := client.CheckMembershipByINN(context.Background(), "5260123456")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, `ООО "СтройМонтаж"`, m.Name)
	assert.Equal(t, "5260123456", m.INN)
	assert.Equal(t, "Член СРО", m.Status)
	assert.Equal(t, "12.03.2019", m.JoinDate)
	assert.True(t, m.IsMember)
}

func TestCheckMembershipExcludedOrganization(t *testing.T) {
	client := newRegistryServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(registryPage))
	})

	m, err := client.CheckMembershipByINN(context.Background(), "5261987654")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "Исключен", m.Status)
	assert.False(t, m.IsMember)
}

func TestCheckMembershipNotListed(t *testing.T) {
	client := newRegistryServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(registryPage))
	})

	m, err := client.CheckMembershipByINN(context.Background(), "0000000000")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestCheckMembershipRegistryUnavailable(t *testing.T) {
	client := newRegistryServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})

	m, err := client.CheckMembershipByINN(context.Background(), "5260123456")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestCheckMembershipNetworkError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1/reestr/", time.Second, zap.NewNop())

	m, err := client.CheckMembershipByINN(context.Background(), "5260123456")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestCheckMembershipEmptyINN(t *testing.T) {
	client := NewClient("http://127.0.0.1:1/reestr/", time.Second, zap.NewNop())

	_, err := client.CheckMembershipByINN(context.Background(), "")
	require.Error(t, err)
}
