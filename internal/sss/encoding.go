package sss

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/mrz1836/shamir-mpc/pkg/errors"
)

// shareVersion is the display-encoding version tag.
const shareVersion = "v1"

// EncodeShare renders a Share as shamir-v1-<threshold>-<index>-<hex data>,
// the operator-facing form used for copy/paste, file export, and QR
// display. It is presentation only: Share is the load-bearing in-memory
// type and this encoding carries no guarantees across versions.
func EncodeShare(s *Share) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	return fmt.Sprintf("shamir-%s-%d-%d-%x", shareVersion, s.Threshold, s.Index, s.Data[:s.Length]), nil
}

// DecodeShare parses the shamir-v1-<threshold>-<index>-<hex data> form
// produced by EncodeShare.
func DecodeShare(encoded string) (Share, error) {
	parts := strings.Split(encoded, "-")
	if len(parts) != 5 {
		return Share{}, errors.WithDetails(errors.ErrInvalidParam, map[string]string{"reason": "malformed share string"})
	}
	if parts[0] != "shamir" || parts[1] != shareVersion {
		return Share{}, errors.WithDetails(errors.ErrInvalidParam, map[string]string{"reason": "unsupported share version"})
	}

	k, err := strconv.Atoi(parts[2])
	if err != nil || k < 2 || k > MaxParties {
		return Share{}, errors.ErrInvalidThreshold
	}

	idx, err := strconv.Atoi(parts[3])
	if err != nil || idx < 1 || idx > MaxParties {
		return Share{}, errors.WithDetails(errors.ErrInvalidParam, map[string]string{"reason": "invalid share index"})
	}

	data, err := hex.DecodeString(parts[4])
	if err != nil {
		return Share{}, errors.WithDetails(errors.ErrInvalidParam, map[string]string{"reason": "invalid hex payload"})
	}
	if len(data) < 1 || len(data) > MaxLength {
		return Share{}, errors.WithDetails(errors.ErrInvalidParam, map[string]string{"reason": "payload length out of range"})
	}

	var s Share
	s.Threshold = byte(k)
	s.Index = byte(idx)
	s.Length = len(data)
	copy(s.Data[:], data)

	return s, nil
}
