package identity

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	mailTokenRecordVersionV1 = 1
	mailTokenMaxAttempts     = 5
)

var (
	errTokenNotFound         = errors.New("mail token not found")
	errTokenSecretMismatch   = errors.New("mail token secret mismatch")
	errTokenAttemptsExceeded = errors.New("mail token attempts exceeded")
)

// mailTokenRecord is the server-side half of one outstanding verification or
// reset challenge. Only the secret's hash is stored.
type mailTokenRecord struct {
	AccountID  string
	SecretHash [32]byte
	ExpiresAt  int64
	Attempts   uint16
}

// mailTokenStore keeps outstanding challenges keyed by kind and token ID,
// expiring with the challenge TTL.
type mailTokenStore struct {
	redis  *redis.Client
	prefix string
}

func newMailTokenStore(redisClient *redis.Client, prefix string) *mailTokenStore {
	return &mailTokenStore{redis: redisClient, prefix: prefix}
}

func (s *mailTokenStore) key(kind MailKind, tokenID string) string {
	return s.prefix + ":tok:" + string(kind) + ":" + tokenID
}

func (s *mailTokenStore) Save(ctx context.Context, kind MailKind, tokenID string, record *mailTokenRecord, ttl time.Duration) error {
	encoded, err := encodeMailTokenRecord(record)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(kind, tokenID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	return nil
}

// Consume deletes and returns the record when providedHash matches its stored
// secret hash. A mismatch burns one attempt; exceeding the attempt cap or the
// expiry deletes the record.
func (s *mailTokenStore) Consume(ctx context.Context, kind MailKind, tokenID string, providedHash [32]byte) (*mailTokenRecord, error) {
	const maxRetries = 4
	key := s.key(kind, tokenID)

	for i := 0; i < maxRetries; i++ {
		var matched *mailTokenRecord

		err := s.redis.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			record, err := decodeMailTokenRecord(data)
			if err != nil {
				return err
			}

			if time.Now().Unix() > record.ExpiresAt {
				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return errTokenNotFound
			}

			if subtle.ConstantTimeCompare(record.SecretHash[:], providedHash[:]) != 1 {
				record.Attempts++
				if int(record.Attempts) >= mailTokenMaxAttempts {
					_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
						pipe.Del(ctx, key)
						return nil
					})
					if err != nil {
						return err
					}
					return errTokenAttemptsExceeded
				}

				ttl := time.Until(time.Unix(record.ExpiresAt, 0))
				if ttl <= 0 {
					_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
						pipe.Del(ctx, key)
						return nil
					})
					if err != nil {
						return err
					}
					return errTokenNotFound
				}

				updated, err := encodeMailTokenRecord(record)
				if err != nil {
					return err
				}

				_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Set(ctx, key, updated, ttl)
					return nil
				})
				if err != nil {
					return err
				}
				return errTokenSecretMismatch
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			if err != nil {
				return err
			}

			matched = record
			return nil
		}, key)

		if err == redis.TxFailedErr {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return nil, errTokenNotFound
			case errors.Is(err, errTokenNotFound), errors.Is(err, errTokenSecretMismatch), errors.Is(err, errTokenAttemptsExceeded):
				return nil, err
			default:
				return nil, fmt.Errorf("%w: %v", errRedisUnavailable, err)
			}
		}

		return matched, nil
	}

	return nil, errTokenNotFound
}

func encodeMailTokenRecord(record *mailTokenRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(mailTokenRecordVersionV1)

	if err := binary.Write(&buf, binary.BigEndian, record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, record.ExpiresAt); err != nil {
		return nil, err
	}

	if len(record.AccountID) > 65535 {
		return nil, errors.New("mail token account id too long")
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(record.AccountID))); err != nil {
		return nil, err
	}
	buf.WriteString(record.AccountID)
	buf.Write(record.SecretHash[:])

	return buf.Bytes(), nil
}

func decodeMailTokenRecord(data []byte) (*mailTokenRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != mailTokenRecordVersionV1 {
		return nil, errors.New("invalid mail token record version")
	}

	record := &mailTokenRecord{}

	if err := binary.Read(reader, binary.BigEndian, &record.Attempts); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &record.ExpiresAt); err != nil {
		return nil, err
	}

	var accountIDLen uint16
	if err := binary.Read(reader, binary.BigEndian, &accountIDLen); err != nil {
		return nil, err
	}

	accountID := make([]byte, accountIDLen)
	if _, err := io.ReadFull(reader, accountID); err != nil {
		return nil, err
	}
	record.AccountID = string(accountID)

	if _, err := io.ReadFull(reader, record.SecretHash[:]); err != nil {
		return nil, err
	}

	return record, nil
}
