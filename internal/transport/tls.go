package transport

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"time"

	"udptunnel/internal/conf"
)

// serverTLSConfig returns the TLS config a QUIC listener hands to the QUIC
// handshake. QUIC mandates TLS at the transport layer; since the tunnel
// protocol carries no authentication of its own, a self-signed certificate
// is generated on the fly unless the operator supplied one.
func serverTLSConfig(cfg *conf.QUIC) (*tls.Config, error) {
	if cfg.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		return &tls.Config{Certificates: []tls.Certificate{cert}, NextProtos: []string{cfg.ALPN}}, nil
	}
	cert, err := generateSelfSigned()
	if err != nil {
		return nil, err
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, NextProtos: []string{cfg.ALPN}}, nil
}

// clientTLSConfig trusts any certificate the server presents. There is no
// certificate pinning or CA infrastructure here because authentication is
// explicitly out of scope for this tunnel protocol; QUIC is used as a
// reliable, congestion-controlled byte stream, not for identity.
func clientTLSConfig(cfg *conf.QUIC) *tls.Config {
	return &tls.Config{InsecureSkipVerify: true, NextProtos: []string{cfg.ALPN}}
}

func generateSelfSigned() (tls.Certificate, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}
	serial, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		return tls.Certificate{}, err
	}
	template := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "udptunnel"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(10 * 365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv}, nil
}
