// Package network lets replicas of the same game read each other's latest
// snapshot over HTTP.
//
// # Peer
//
// A Peer serves GET /latest with the newest block of its own replica,
// YAML encoded and zstd compressed. The same Peer implements
// replica.Transport: FetchPeerLatest downloads the block of another
// replica, checks its hash, its signature and the game it belongs to, and
// hands back the snapshot it carries.
//
// Any failure to obtain a trustworthy snapshot is reported as
// replica.ErrUnavailable, so a node simply tries another peer later.
//
// # TLS
//
// WithCertificate serves over HTTPS and presents the certificate when
// fetching. WithLimitedCAs restricts both sides to certificates of a given
// pool. GenerateSelfSignedCert creates certificates for local deployments.
package network
