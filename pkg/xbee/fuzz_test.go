// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package xbee

import (
	"bytes"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// fuzzSetup returns the round count (FUZZ_ROUNDS, default 1000) and a
// generator seeded from FUZZ_SEED or the clock. The seed is logged so a
// failing run can be repeated.
func fuzzSetup(t *testing.T) (int, *rand.Rand) {
	t.Helper()

	rounds := 1000
	if n, err := strconv.Atoi(os.Getenv("FUZZ_ROUNDS")); err == nil && n > 0 {
		rounds = n
	}

	seed := time.Now().UnixNano()
	if v, err := strconv.ParseInt(os.Getenv("FUZZ_SEED"), 10, 64); err == nil {
		seed = v
	}
	t.Logf("%d rounds, seed %d (reproduce with FUZZ_SEED=%d)", rounds, seed, seed)

	return rounds, rand.New(rand.NewSource(seed))
}

// ============================================================
// Decoder Fuzz Tests
// ============================================================

// TestFuzzDecoder_RandomBytes feeds random bytes to the decoder
// and verifies it doesn't crash or panic
func TestFuzzDecoder_RandomBytes(t *testing.T) {
	rounds, rng := fuzzSetup(t)

	for i := 0; i < rounds; i++ {
		d := NewDecoder(rng.Intn(2) == 1)

		length := rng.Intn(512) + 1
		data := make([]byte, length)
		rng.Read(data)

		// Anything that decodes must parse or fail cleanly
		for _, b := range data {
			if p, _ := d.DecodeByte(b); p != nil {
				ParseFrame(p)
			}
		}
	}
}

// TestFuzzDecoder_RandomFrames encodes random frame data and checks it
// decodes back unchanged in both API modes
func TestFuzzDecoder_RandomFrames(t *testing.T) {
	rounds, rng := fuzzSetup(t)

	for i := 0; i < rounds; i++ {
		escaped := rng.Intn(2) == 1
		d := NewDecoder(escaped)

		data := make([]byte, rng.Intn(MaxFrameDataSize)+1)
		rng.Read(data)

		var packet *Packet
		for _, b := range MustEncodeFrameData(data, escaped) {
			p, err := d.DecodeByte(b)
			if err != nil {
				t.Fatalf("Round %d (escaped=%v): unexpected decode error: %v", i, escaped, err)
			}
			if p != nil {
				packet = p
			}
		}

		if packet == nil {
			t.Errorf("Round %d: expected packet, got nil", i)
			continue
		}
		if !bytes.Equal(packet.Data(), data) {
			t.Errorf("Round %d: data mismatch: expected % X, got % X", i, data, packet.Data())
		}
	}
}

// TestFuzzDecoder_CorruptedFrames flips a random byte and checks the
// decoder never returns a packet with different data
func TestFuzzDecoder_CorruptedFrames(t *testing.T) {
	rounds, rng := fuzzSetup(t)

	for i := 0; i < rounds; i++ {
		d := NewDecoder(false)

		data := make([]byte, rng.Intn(32)+1)
		rng.Read(data)
		wire := MustEncodeFrameData(data, false)

		// Corrupt a data or checksum byte (not start or length)
		idx := rng.Intn(len(wire)-3) + 3
		wire[idx] ^= byte(rng.Intn(255) + 1)

		for _, b := range wire {
			p, _ := d.DecodeByte(b)
			if p != nil {
				t.Errorf("Round %d: corrupted frame accepted: % X", i, p.Data())
			}
		}
	}
}

// TestFuzzSamples_RoundTrip encodes random samples and parses them back
func TestFuzzSamples_RoundTrip(t *testing.T) {
	rounds, rng := fuzzSetup(t)

	for i := 0; i < rounds; i++ {
		s := NewSample()
		for bit := 0; bit < 16; bit++ {
			if rng.Intn(3) == 0 {
				s.Digital[DigitalName(bit)] = rng.Intn(2) == 1
			}
		}
		for bit := 0; bit < 8; bit++ {
			if rng.Intn(3) == 0 {
				s.Analog[AnalogName(bit)] = rng.Intn(1024)
			}
		}

		samples, err := ParseSamples(EncodeSample(s))
		if err != nil {
			t.Fatalf("Round %d: parse error: %v", i, err)
		}
		got := samples[0]
		if len(got.Digital) != len(s.Digital) || len(got.Analog) != len(s.Analog) {
			t.Errorf("Round %d: channel count mismatch", i)
			continue
		}
		for name, v := range s.Digital {
			if got.Digital[name] != v {
				t.Errorf("Round %d: %s mismatch", i, name)
			}
		}
		for name, v := range s.Analog {
			if got.Analog[name] != v {
				t.Errorf("Round %d: %s mismatch", i, name)
			}
		}
	}
}
