// Package wordpress реализует клиент кастомного REST API коммерческого сайта.
//
// Эндпоинт verificar подтверждает ключ доступа; pedidos, productos и miembros
// отдают массивы плоских объектов. Имена колонок в ответах произвольные,
// нормализация выполняется на слое выборки данных.
package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/redcoes/dashboard-api/internal/metrics"
)

const (
	resourceVerify   = "verificar"
	resourceOrders   = "pedidos"
	resourceProducts = "productos"
	resourceMembers  = "miembros"
)

// ErrKeyRejected означает, что эндпоинт верификации не принял ключ.
// Отличается от сетевой ошибки: пользователь может ввести ключ заново.
var ErrKeyRejected = errors.New("access key rejected")

type Client struct {
	baseURL      string
	httpClient   *http.Client
	verifyClient *http.Client
}

// NewClient создаёт клиент API. verifyTimeout ограничивает только проверку
// ключа, остальные ресурсы ходят с общим timeout.
func NewClient(baseURL string, timeout, verifyTimeout time.Duration) *Client {
	return &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: timeout},
		verifyClient: &http.Client{Timeout: verifyTimeout},
	}
}

func (c *Client) resourceURL(resource, key string) string {
	return fmt.Sprintf("%s/%s?key=%s", c.baseURL, resource, url.QueryEscape(key))
}

// VerifyKey проверяет ключ доступа. Возвращает nil при статусе "ok",
// ErrKeyRejected при отказе и транспортную ошибку при недоступном апстриме.
func (c *Client) VerifyKey(ctx context.Context, key string) error {
	const op = "wordpress.VerifyKey"
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resourceURL(resourceVerify, key), nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.verifyClient.Do(req)
	metrics.ObserveUpstream("wordpress", resourceVerify, start, err)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %w", op, ErrKeyRejected)
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("%s: malformed response: %w", op, err)
	}
	if body.Status != "ok" {
		return fmt.Errorf("%s: %w", op, ErrKeyRejected)
	}
	return nil
}

// fetch читает один ресурс как массив сырых строк.
func (c *Client) fetch(ctx context.Context, resource, key string) ([]map[string]any, error) {
	op := "wordpress." + resource
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resourceURL(resource, key), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := c.httpClient.Do(req)
	metrics.ObserveUpstream("wordpress", resource, start, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var rows []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("%s: malformed response: %w", op, err)
	}
	return rows, nil
}

// Orders возвращает сырые строки заказов.
func (c *Client) Orders(ctx context.Context, key string) ([]map[string]any, error) {
	return c.fetch(ctx, resourceOrders, key)
}

// Products возвращает сырые строки товаров.
func (c *Client) Products(ctx context.Context, key string) ([]map[string]any, error) {
	return c.fetch(ctx, resourceProducts, key)
}

// Members возвращает сырые строки членств.
func (c *Client) Members(ctx context.Context, key string) ([]map[string]any, error) {
	return c.fetch(ctx, resourceMembers, key)
}
