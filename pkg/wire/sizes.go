package wire

import (
	"github.com/google/uuid"
)

// BufSizeClientConnect returns the packed size of a ClientConnect carrying entry.
func BufSizeClientConnect(entry *ClientEntry) int {
	return BufSize(&ClientConnect{Entry: *entry})
}

// BufSizeClientList returns the packed size of a client list message.
func BufSizeClientList(entries []ClientEntry) int {
	return BufSize(&ClientList{Action: ClientListReplace, Entries: entries})
}

// BufSizeRPTRequest returns the packed size of a Request carrying an RDM
// command buffer of cmdLen bytes.
func BufSizeRPTRequest(cmdLen int) int {
	return PreambleSize + RootHeaderSize + RPTHeaderSize + RequestHeaderSize + RDMCommandHeader + cmdLen
}

// BufSizeRPTStatus returns the packed size of a Status PDU with the given text.
func BufSizeRPTStatus(text string) int {
	return PreambleSize + RootHeaderSize + RPTHeaderSize + StatusHeaderSize + len(text)
}

// BufSizeRPTNotification returns the packed size of a Notification
// carrying msgs.
func BufSizeRPTNotification(msgs [][]byte) int {
	n := PreambleSize + RootHeaderSize + RPTHeaderSize + RequestHeaderSize
	for _, m := range msgs {
		n += RDMCommandHeader + len(m)
	}
	return n
}

// PackRPTRequest packs a Request carrying one RDM command buffer.
func PackRPTRequest(buf []byte, cid uuid.UUID, hdr *RPTHeader, cmd []byte) (int, error) {
	return Pack(buf, cid, &RPTMessage{Header: *hdr, Body: &RPTRequest{Command: cmd}})
}

// PackRPTStatus packs a Status PDU.
func PackRPTStatus(buf []byte, cid uuid.UUID, hdr *RPTHeader, status *RPTStatus) (int, error) {
	return Pack(buf, cid, &RPTMessage{Header: *hdr, Body: status})
}

// PackRPTNotification packs a Notification carrying one or more RDM buffers.
func PackRPTNotification(buf []byte, cid uuid.UUID, hdr *RPTHeader, msgs [][]byte) (int, error) {
	return Pack(buf, cid, &RPTMessage{Header: *hdr, Body: &RPTNotification{Messages: msgs}})
}

// PackClientList packs a client list message. The list action selects the
// broker vector.
func PackClientList(buf []byte, cid uuid.UUID, list *ClientList) (int, error) {
	return Pack(buf, cid, list)
}

// PackClientConnect packs a ClientConnect.
func PackClientConnect(buf []byte, cid uuid.UUID, msg *ClientConnect) (int, error) {
	return Pack(buf, cid, msg)
}

// PackConnectReply packs a ConnectReply.
func PackConnectReply(buf []byte, cid uuid.UUID, msg *ConnectReply) (int, error) {
	return Pack(buf, cid, msg)
}

// PackClientEntryUpdate packs a ClientEntryUpdate.
func PackClientEntryUpdate(buf []byte, cid uuid.UUID, msg *ClientEntryUpdate) (int, error) {
	return Pack(buf, cid, msg)
}

// PackRedirect packs a Redirect. The address family selects the vector.
func PackRedirect(buf []byte, cid uuid.UUID, msg *Redirect) (int, error) {
	return Pack(buf, cid, msg)
}

// PackDisconnect packs a Disconnect.
func PackDisconnect(buf []byte, cid uuid.UUID, reason DisconnectReason) (int, error) {
	return Pack(buf, cid, &Disconnect{Reason: reason})
}

// PackNull packs the heartbeat message.
func PackNull(buf []byte, cid uuid.UUID) (int, error) {
	return Pack(buf, cid, &Null{})
}

// PackFetchClientList packs a FetchClientList.
func PackFetchClientList(buf []byte, cid uuid.UUID) (int, error) {
	return Pack(buf, cid, &FetchClientList{})
}

// EncodeRPTRequest allocates and packs a Request.
func EncodeRPTRequest(cid uuid.UUID, hdr *RPTHeader, cmd []byte) ([]byte, error) {
	return Encode(cid, &RPTMessage{Header: *hdr, Body: &RPTRequest{Command: cmd}})
}

// EncodeRPTStatus allocates and packs a Status PDU.
func EncodeRPTStatus(cid uuid.UUID, hdr *RPTHeader, code RPTStatusCode, text string) ([]byte, error) {
	return Encode(cid, &RPTMessage{Header: *hdr, Body: &RPTStatus{Code: code, Text: text}})
}

// EncodeRPTNotification allocates and packs a Notification.
func EncodeRPTNotification(cid uuid.UUID, hdr *RPTHeader, msgs [][]byte) ([]byte, error) {
	return Encode(cid, &RPTMessage{Header: *hdr, Body: &RPTNotification{Messages: msgs}})
}
