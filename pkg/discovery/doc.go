// Package discovery implements DNS-SD broker discovery for RDMnet.
//
// Brokers register a single service instance of type _rdmnet._tcp with a
// subtype per scope (_<scope>._sub._rdmnet._tcp), so clients can browse only
// the brokers serving the scope they are configured for.
//
// # TXT records
//
//   - TxtVers: TXT record format version (1)
//   - ConfScope: the scope the broker serves
//   - E133Vers: E1.33 protocol version
//   - CID: broker CID, 32 hex digits
//   - UID: broker UID, 12 hex digits
//   - Model, Manuf: informational strings
//
// # Collaborators
//
// The RPT client depends only on the Monitor and MonitorHandler interfaces;
// the broker only on Advertiser. MDNSMonitor and MDNSAdvertiser implement them
// with github.com/enbility/zeroconf/v3.
package discovery
