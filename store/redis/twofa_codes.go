package redis

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrEthical07/authservice/domain"
)

const challengeRecordVersion1 = 1

var errChallengeCorrupt = errors.New("2fa challenge record corrupt")

type challengeRecord struct {
	LoginAttemptID string
	Code           string
}

// TwoFACodeStore keeps one challenge record per email.
type TwoFACodeStore struct {
	redis  Client
	prefix string
	ttl    time.Duration
}

// NewTwoFACodeStore returns a store whose records expire after ttl. A zero
// ttl keeps records until they are removed.
func NewTwoFACodeStore(client Client, prefix string, ttl time.Duration) *TwoFACodeStore {
	if ttl < 0 {
		ttl = 0
	}
	return &TwoFACodeStore{redis: client, prefix: normalizePrefix(prefix), ttl: ttl}
}

func (s *TwoFACodeStore) key(email domain.Email) string {
	return s.prefix + ":2fa:" + email.String()
}

// AddCode overwrites any previous challenge for email.
func (s *TwoFACodeStore) AddCode(ctx context.Context, email domain.Email, id domain.LoginAttemptID, code domain.TwoFACode) error {
	encoded, err := encodeChallenge(&challengeRecord{LoginAttemptID: id.String(), Code: code.String()})
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(email), encoded, s.ttl).Err(); err != nil {
		return backendError("store 2fa challenge", err)
	}
	return nil
}

func (s *TwoFACodeStore) RemoveCode(ctx context.Context, email domain.Email) error {
	n, err := s.redis.Del(ctx, s.key(email)).Result()
	if err != nil {
		return backendError("remove 2fa challenge", err)
	}
	if n == 0 {
		return domain.ErrLoginAttemptIDNotFound
	}
	return nil
}

// GetCode returns the open challenge for email. A record that fails to
// decode is deleted and reported as a backend error.
func (s *TwoFACodeStore) GetCode(ctx context.Context, email domain.Email) (domain.LoginAttemptID, domain.TwoFACode, error) {
	data, err := s.redis.Get(ctx, s.key(email)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", "", domain.ErrLoginAttemptIDNotFound
		}
		return "", "", backendError("load 2fa challenge", err)
	}

	record, err := decodeChallenge(data)
	if err != nil {
		_, _ = s.redis.Del(ctx, s.key(email)).Result()
		return "", "", backendError("decode 2fa challenge", err)
	}
	return domain.LoginAttemptID(record.LoginAttemptID), domain.TwoFACode(record.Code), nil
}

// consumeChallengeLua deletes KEYS[1] only when it holds exactly ARGV[1].
//
// Returns:
//
//	1 consumed, 0 not found, -1 mismatch (record kept),
//	-2 unknown record version (record deleted)
var consumeChallengeLua = goredis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return 0
end
if string.byte(data, 1) ~= tonumber(ARGV[2]) then
  redis.call('DEL', KEYS[1])
  return -2
end
if data ~= ARGV[1] then
  return -1
end
redis.call('DEL', KEYS[1])
return 1
`)

// ConsumeCode compares the stored record with the encoding of id and code
// and deletes it on a match, atomically on the server.
func (s *TwoFACodeStore) ConsumeCode(ctx context.Context, email domain.Email, id domain.LoginAttemptID, code domain.TwoFACode) error {
	expected, err := encodeChallenge(&challengeRecord{LoginAttemptID: id.String(), Code: code.String()})
	if err != nil {
		return err
	}

	res, err := consumeChallengeLua.Run(ctx, s.redis, []string{s.key(email)}, expected, challengeRecordVersion1).Int()
	if err != nil {
		return backendError("consume 2fa challenge", err)
	}

	switch res {
	case 1:
		return nil
	case 0:
		return domain.ErrLoginAttemptIDNotFound
	case -1:
		return domain.ErrChallengeMismatch
	default:
		return backendError("consume 2fa challenge", errChallengeCorrupt)
	}
}

func encodeChallenge(record *challengeRecord) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(challengeRecordVersion1)

	for _, field := range []string{record.LoginAttemptID, record.Code} {
		if len(field) > 65535 {
			return nil, errors.New("2fa challenge field length exceeded")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeChallenge(data []byte) (*challengeRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errChallengeCorrupt, err)
	}
	if version != challengeRecordVersion1 {
		return nil, fmt.Errorf("%w: unknown version %d", errChallengeCorrupt, version)
	}

	id, err := readField(reader)
	if err != nil {
		return nil, err
	}
	code, err := readField(reader)
	if err != nil {
		return nil, err
	}
	if reader.Len() != 0 {
		return nil, fmt.Errorf("%w: trailing bytes", errChallengeCorrupt)
	}

	return &challengeRecord{LoginAttemptID: id, Code: code}, nil
}

func readField(reader *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(reader, binary.BigEndian, &n); err != nil {
		return "", fmt.Errorf("%w: %v", errChallengeCorrupt, err)
	}
	field := make([]byte, n)
	if _, err := io.ReadFull(reader, field); err != nil {
		return "", fmt.Errorf("%w: %v", errChallengeCorrupt, err)
	}
	return string(field), nil
}
