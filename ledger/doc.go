// Package ledger implements the signed commit log each replica keeps of its
// game snapshots.
//
// # Core Components
//
// Blockchain: an append-only list of blocks for one replica of one game,
// hash chained from a genesis block holding the initial snapshot.
//
// Block: one committed snapshot together with the commit message, the
// link to the previous block and the replica's signature.
//
// Signer: the replica's Schnorr key pair on the Ed25519 curve.
//
// # Security Properties
//
// The blockchain provides:
//   - Tamper detection: any modification breaks the hash chain
//   - Authenticity: every block is signed by the replica that committed it
//   - Auditability: the full history of snapshots can be replayed
//
// # Usage
//
// Create a blockchain with the genesis snapshot, then append every snapshot
// the replica commits. Blocks received from peers are checked on their own
// with Block.Verify.
package ledger
