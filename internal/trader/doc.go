// Package trader scans cached instruments for model/market disagreement
// and places limit orders on the ones that clear its thresholds.
//
// A dedup guard keyed on both market ticker and parent event ticker
// ensures at most one order per contest per process lifetime, and open
// venue positions are re-checked on every scan so restarts do not
// double up. Dry-run mode walks the identical code path and marks the
// guard but never submits.
package trader
