package websocket

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/lexora/lexora_backend/models"
	"github.com/lexora/lexora_backend/services"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	return hub, func() {
		cancel()
		<-hub.done
	}
}

func fakeClient(userID string) *Client {
	return &Client{UserID: userID, send: make(chan Notification, sendBuffer)}
}

func TestHub_SendToUser(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub, stop := startHub(t)
	defer stop()

	assert.ErrorIs(t, hub.SendToUser("tom", Notification{Type: "x"}), ErrNotConnected)

	phone, laptop := fakeClient("tom"), fakeClient("tom")
	require.True(t, hub.Register(phone))
	require.True(t, hub.Register(laptop))
	require.Eventually(t, func() bool { return hub.Connected("tom") == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.SendToUser("tom", Notification{Type: "ping"}))
	assert.Equal(t, "ping", (<-phone.send).Type)
	got := <-laptop.send
	assert.Equal(t, "tom", got.UserID)

	hub.Unregister(phone)
	require.Eventually(t, func() bool { return hub.Connected("tom") == 1 }, time.Second, 5*time.Millisecond)
	_, open := <-phone.send
	assert.False(t, open)
}

func TestHub_StopClosesClients(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub, stop := startHub(t)

	client := fakeClient("sm")
	require.True(t, hub.Register(client))
	stop()

	_, open := <-client.send
	assert.False(t, open)
	assert.False(t, hub.Register(fakeClient("late")))
	hub.Unregister(client)
}

func TestHub_OnCustomerRegistered(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub, stop := startHub(t)
	defer stop()

	tom := fakeClient("tom")
	require.True(t, hub.Register(tom))
	require.Eventually(t, func() bool { return hub.Connected("tom") == 1 }, time.Second, 5*time.Millisecond)

	result := &services.CascadeResult{
		Customer: models.Customer{ID: "c1", TokenSerial: "LX-9"},
		Credits: []models.Credit{
			{UserID: "sm", Role: models.RoleSalesman, Amount: 600},
			{UserID: "tom", Role: models.RoleTeamOperationManager, Amount: 400},
		},
	}
	require.NoError(t, hub.OnCustomerRegistered(context.Background(), result, &models.User{ID: "sm"}))

	got := <-tom.send
	assert.Equal(t, NotificationTypeCommissionCredited, got.Type)
	assert.Contains(t, got.Message, "400")
	assert.Contains(t, got.Message, "LX-9")
}

func TestHandleWebSocket(t *testing.T) {
	defer goleak.VerifyNone(t)
	hub, stop := startHub(t)
	defer stop()

	e := echo.New()
	e.GET("/ws", func(c echo.Context) error {
		return HandleWebSocket(c, hub, c.QueryParam("uid"))
	})
	srv := httptest.NewServer(e)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?uid=gom"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	var welcome Notification
	require.NoError(t, conn.ReadJSON(&welcome))
	assert.Equal(t, NotificationTypeConnected, welcome.Type)
	assert.Equal(t, "gom", welcome.UserID)

	require.Eventually(t, func() bool { return hub.Connected("gom") == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, hub.SendToUser("gom", Notification{Type: NotificationTypeCommissionCredited, Message: "250"}))

	var credited Notification
	require.NoError(t, conn.ReadJSON(&credited))
	assert.Equal(t, "250", credited.Message)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Connected("gom") == 0 }, time.Second, 5*time.Millisecond)
}

func TestHandleWebSocket_RequiresUser(t *testing.T) {
	hub := NewHub(nil)
	e := echo.New()
	req := httptest.NewRequest("GET", "/ws", nil)
	rec := httptest.NewRecorder()

	err := HandleWebSocket(e.NewContext(req, rec), hub, "")
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 401, httpErr.Code)
}
