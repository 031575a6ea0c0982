package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/domain"
	"github.com/Lucas23-IECI/PlantillaWeb-sub001/internal/storage"
	apperrors "github.com/Lucas23-IECI/PlantillaWeb-sub001/pkg/errors"
)

func TestLoginStoresSessionAndLogoutClearsIt(t *testing.T) {
	c, mem, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		var in LoginInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		if in.Password != "secreto123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Credenciales inválidas"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":{"token":"tok","user":{"id":"u1","email":"ana@example.cl","name":"Ana","role":"customer"}}}`))
	})
	ctx := context.Background()

	_, err := c.Login(ctx, LoginInput{Email: "ana@example.cl", Password: "mala"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.False(t, c.IsAuthenticated(ctx))

	session, err := c.Login(ctx, LoginInput{Email: "ana@example.cl", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, "tok", session.Token)

	token, _, _ := mem.Get(ctx, storage.KeyAuthToken)
	assert.Equal(t, "tok", token)
	user, ok := c.CurrentUser(ctx)
	require.True(t, ok)
	assert.Equal(t, "Ana", user.Name)
	assert.True(t, c.IsAuthenticated(ctx))

	require.NoError(t, c.Logout(ctx))
	assert.False(t, c.IsAuthenticated(ctx))
	_, ok = c.CurrentUser(ctx)
	assert.False(t, ok)
}

func TestRegister(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/register", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"token":"new","user":{"id":"u9","email":"b@example.cl","name":"Bea","role":"customer"}}}`))
	})

	session, err := c.Register(context.Background(), RegisterInput{Name: "Bea", Email: "b@example.cl", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, session.User.Role)
}

func TestCheckoutFlowCalls(t *testing.T) {
	c, _, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/transactions":
			var req domain.CheckoutRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "p1", req.Items[0].ProductID)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"data":{"id":"t1","buy_order":"BO-1","total":2000,"status":"pending"}}`))
		case "/api/webpay/create":
			_, _ = w.Write([]byte(`{"data":{"token":"wp-1","url":"http://localhost/mock-webpay"}}`))
		case "/api/webpay/commit":
			_, _ = w.Write([]byte(`{"data":{"status":"paid","transaction_id":"t1","amount":2000,"order":{"id":"o1","number":1001}}}`))
		case "/api/notices/active":
			_, _ = w.Write([]byte(`{"data":[{"id":"n1","title":"Despacho gratis","active":true}]}`))
		case "/api/discount-codes/validate":
			assert.Equal(t, "BIENVENIDA10", r.URL.Query().Get("code"))
			assert.Equal(t, "2000", r.URL.Query().Get("subtotal"))
			_, _ = w.Write([]byte(`{"data":{"valid":true,"code":"BIENVENIDA10","discount_amount":200}}`))
		}
	})
	ctx := context.Background()

	tx, err := c.CreateTransaction(ctx, domain.CheckoutRequest{
		Items: []domain.CheckoutItem{{ProductID: "p1", Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", tx.ID)

	init, err := c.CreateWebpay(ctx, tx.ID, "http://localhost/return")
	require.NoError(t, err)
	assert.Equal(t, "wp-1", init.Token)

	res, err := c.CommitWebpay(ctx, init.Token)
	require.NoError(t, err)
	assert.True(t, res.Approved())
	assert.Equal(t, 1001, res.Order.Number)

	notices, err := c.ActiveNotices(ctx)
	require.NoError(t, err)
	assert.Len(t, notices, 1)

	v, err := c.ValidateDiscountCode(ctx, "BIENVENIDA10", 2000)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, int64(200), v.DiscountAmount)
}
