// Package responder implements the default RDM responder of an RDMnet
// component.
//
// A Responder answers GET and SET commands addressed to its UID. Standard
// E1.20 and E1.33 parameters are registered according to the component's
// role; applications add their own with Register. Unknown parameters and
// unsupported command classes are answered with a NACK, and responses too
// long for one RDM message are split into ACK_OVERFLOW fragments.
package responder
