package identity

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const accountRecordVersionV1 = 1

// accountRecord is the directory's stored form of one account. The codec is
// versioned so stored records survive field additions.
type accountRecord struct {
	ID            string
	Email         string
	DisplayLabel  string
	PasswordHash  string
	EmailVerified bool
	Disabled      bool
	CreatedAt     int64
}

func encodeAccountRecord(r *accountRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(accountRecordVersionV1)

	var flags byte
	if r.EmailVerified {
		flags |= 1
	}
	if r.Disabled {
		flags |= 2
	}
	buf.WriteByte(flags)

	if err := binary.Write(&buf, binary.BigEndian, r.CreatedAt); err != nil {
		return nil, err
	}

	for _, field := range []string{r.ID, r.Email, r.DisplayLabel, r.PasswordHash} {
		if len(field) > 65535 {
			return nil, errors.New("account record field too long")
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeAccountRecord(data []byte) (*accountRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != accountRecordVersionV1 {
		return nil, errors.New("invalid account record version")
	}

	flags, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}

	record := &accountRecord{
		EmailVerified: flags&1 != 0,
		Disabled:      flags&2 != 0,
	}

	if err := binary.Read(reader, binary.BigEndian, &record.CreatedAt); err != nil {
		return nil, err
	}

	for _, target := range []*string{&record.ID, &record.Email, &record.DisplayLabel, &record.PasswordHash} {
		var length uint16
		if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
			return nil, err
		}
		field := make([]byte, length)
		if _, err := io.ReadFull(reader, field); err != nil {
			return nil, err
		}
		*target = string(field)
	}

	return record, nil
}
