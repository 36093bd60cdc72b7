package services

import (
	"log"
	"os"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v4"
)

// jwtSecret retorna a mesma chave usada pelo provedor de identidade
func jwtSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "cautela-secret-key-change-in-production"
	}
	return []byte(secret)
}

// WSMessage representa uma mensagem enviada pelo WebSocket
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// TransitionPayload é o payload de notificação de transição de cautela
type TransitionPayload struct {
	CautelaID   uint      `json:"cautela_id"`
	MaterialID  uint      `json:"material_id"`
	RequesterID uint      `json:"requester_id"`
	FromStatus  string    `json:"from_status"`
	ToStatus    string    `json:"to_status"`
	ActorID     uint      `json:"actor_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// Client representa um cliente conectado ao hub
type Client struct {
	ID     uint
	UserID uint
	Conn   *websocket.Conn
	Send   chan WSMessage
	Hub    *NotifyHub
}

// NotifyHub distribui notificações de transição para os clientes
// conectados. É um sink fire-and-forget: a entrega não participa da
// correção do fluxo de cautelas e nunca bloqueia uma transição.
type NotifyHub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan WSMessage
	mutex      sync.RWMutex
}

// NewNotifyHub cria um novo hub de notificações
func NewNotifyHub() *NotifyHub {
	return &NotifyHub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan WSMessage, 64),
	}
}

// Run executa o loop do hub
func (h *NotifyHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Cliente %d conectado ao hub. Total: %d", client.UserID, len(h.clients))

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			log.Printf("Cliente %d desconectado do hub", client.UserID)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// NotifyTransition publica a transição sem bloquear o chamador;
// se o hub está saturado a notificação é descartada
func (h *NotifyHub) NotifyTransition(payload TransitionPayload) {
	message := WSMessage{
		Type:    "cautela.transition",
		Payload: payload,
	}
	select {
	case h.broadcast <- message:
	default:
		log.Printf("Hub saturado, notificação da cautela %d descartada", payload.CautelaID)
	}
}

// HandleWebSocket autentica e registra uma conexão WebSocket
func (h *NotifyHub) HandleWebSocket(c *websocket.Conn) {
	// Token JWT vem nos parâmetros de query
	tokenString := c.Query("token")
	if tokenString == "" {
		c.Close()
		return
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		c.Close()
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.Close()
		return
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		c.Close()
		return
	}

	client := &Client{
		ID:     uint(time.Now().UnixNano()),
		UserID: uint(userIDFloat),
		Conn:   c,
		Send:   make(chan WSMessage, 256),
		Hub:    h,
	}

	h.register <- client

	go client.writePump()
	client.readPump()
}

// readPump consome o socket até a desconexão do cliente
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump envia mensagens e pings ao cliente
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
