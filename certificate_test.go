// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package jsep

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"
	"time"

	"github.com/pion/jsep/pkg/rtcerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCertificateRSA(t *testing.T) {
	sk, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.Nil(t, err)

	skPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(sk),
	})

	cert, err := GenerateCertificate(sk)
	assert.Nil(t, err)

	certPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: cert.x509Cert.Raw,
	})

	_, err = tls.X509KeyPair(certPEM, skPEM)
	assert.Nil(t, err)
}

func TestGenerateCertificateECDSA(t *testing.T) {
	sk, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	assert.Nil(t, err)

	skDER, err := x509.MarshalECPrivateKey(sk)
	assert.Nil(t, err)

	skPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "EC PRIVATE KEY",
		Bytes: skDER,
	})

	cert, err := GenerateCertificate(sk)
	assert.Nil(t, err)

	certPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: cert.x509Cert.Raw,
	})

	_, err = tls.X509KeyPair(certPEM, skPEM)
	assert.Nil(t, err)
}

func TestGenerateCertificateUnsupportedKey(t *testing.T) {
	_, sk, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	_, err = GenerateCertificate(sk)
	var notSupported *rtcerr.NotSupportedError
	require.ErrorAs(t, err, &notSupported)
	assert.ErrorIs(t, err, ErrPrivateKeyType)
}

func TestGenerateCertificateExpires(t *testing.T) {
	cert, err := GenerateCertificate(nil)
	assert.Nil(t, err)

	now := time.Now()
	assert.False(t, cert.Expires().IsZero() || now.After(cert.Expires()))
	assert.True(t, Certificate{}.Expires().IsZero())
}

func TestCertificate_GetFingerprints(t *testing.T) {
	cert, err := GenerateCertificate(nil)
	require.NoError(t, err)

	fingerprints, err := cert.GetFingerprints()
	require.NoError(t, err)
	require.Len(t, fingerprints, 1)
	assert.Equal(t, "sha-256", fingerprints[0].Algorithm)
	// 32 colon separated hex bytes
	assert.Len(t, fingerprints[0].Value, 32*3-1)

	session, err := sessionFingerprints([]Certificate{*cert})
	require.NoError(t, err)
	require.Len(t, session, 1)
	assert.Equal(t, strings.ToUpper(fingerprints[0].Value), session[0].Value)
}

func TestSession_Certificates(t *testing.T) {
	cert, err := GenerateCertificate(nil)
	require.NoError(t, err)
	fingerprints, err := sessionFingerprints([]Certificate{*cert})
	require.NoError(t, err)

	s, err := NewSession(Configuration{Name: "offerer", Certificates: []Certificate{*cert}})
	require.NoError(t, err)
	_, err = s.AddTransceiver(MediaTypeAudio)
	require.NoError(t, err)

	offer, err := s.CreateOffer(nil)
	require.NoError(t, err)
	assert.Contains(t, offer, "a=fingerprint:sha-256 "+fingerprints[0].Value+"\r\n")
}
