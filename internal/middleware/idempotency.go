package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/whoskite/kitestudios-sub000/pkg/response"
)

const (
	// IdempotencyKeyHeader lets a client replay a write safely
	IdempotencyKeyHeader = "X-Idempotency-Key"

	idempotencyPrefix = "idempotency:"

	// completed records outlive processing ones so a slow retry still
	// gets the cached response instead of a second submission
	completedTTL  = 24 * time.Hour
	processingTTL = 60 * time.Second
)

type idempotencyStatus string

const (
	statusProcessing idempotencyStatus = "processing"
	statusCompleted  idempotencyStatus = "completed"
)

type idempotencyRecord struct {
	Status       idempotencyStatus `json:"status"`
	RequestHash  string            `json:"request_hash"`
	ResponseCode int               `json:"response_code"`
	ResponseBody string            `json:"response_body"`
	CreatedAt    time.Time         `json:"created_at"`
}

// IdempotencyClient is the subset of redis.Client the middleware needs
type IdempotencyClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// Idempotency dedupes write requests carrying an X-Idempotency-Key header.
// A replayed key returns the cached response; a key reused with a different
// payload is rejected; a key still being processed conflicts. Requests
// without the header pass through, and Redis failures fail open.
func Idempotency(client IdempotencyClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		hash := requestHash(c.Request.Method, c.Request.URL.Path, body)

		ctx := c.Request.Context()
		redisKey := idempotencyPrefix + key

		existing, err := loadRecord(ctx, client, redisKey)
		if err != nil && !errors.Is(err, redis.Nil) {
			c.Next()
			return
		}
		if existing != nil {
			replayRecord(c, existing, hash)
			return
		}

		record := &idempotencyRecord{
			Status:      statusProcessing,
			RequestHash: hash,
			CreatedAt:   time.Now(),
		}
		if !claimKey(ctx, client, redisKey, record) {
			// lost the race: another request holds this key
			if existing, _ = loadRecord(ctx, client, redisKey); existing != nil {
				replayRecord(c, existing, hash)
				return
			}
			c.Next()
			return
		}

		rw := &captureWriter{ResponseWriter: c.Writer, body: bytes.NewBuffer(nil)}
		c.Writer = rw

		c.Next()

		record.Status = statusCompleted
		record.ResponseCode = rw.Status()
		record.ResponseBody = rw.body.String()
		if data, err := json.Marshal(record); err == nil {
			client.Set(ctx, redisKey, string(data), completedTTL)
		}
	}
}

func replayRecord(c *gin.Context, record *idempotencyRecord, hash string) {
	if record.RequestHash != hash {
		response.Error(c, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED",
			"Idempotency key already used with a different request", "")
		c.Abort()
		return
	}
	if record.Status == statusProcessing {
		response.Error(c, http.StatusConflict, "REQUEST_IN_PROGRESS",
			"A request with this idempotency key is already being processed", "")
		c.Abort()
		return
	}
	c.Data(record.ResponseCode, "application/json", []byte(record.ResponseBody))
	c.Abort()
}

func requestHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func loadRecord(ctx context.Context, client IdempotencyClient, key string) (*idempotencyRecord, error) {
	raw, err := client.Get(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func claimKey(ctx context.Context, client IdempotencyClient, key string, record *idempotencyRecord) bool {
	data, err := json.Marshal(record)
	if err != nil {
		return false
	}
	ok, err := client.SetNX(ctx, key, string(data), processingTTL).Result()
	return err == nil && ok
}

type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}
