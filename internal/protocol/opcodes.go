package protocol

// Opcode identifies a client-to-server request carried in a frame whose
// sequence number is below PushSeqBase.
type Opcode uint32

// Request opcodes, per the wire format.
const (
	OpConnect     Opcode = 0x00
	OpAuth        Opcode = 0x01
	OpMotd        Opcode = 0x02
	OpList        Opcode = 0x03
	OpUsers       Opcode = 0x04
	OpJoin        Opcode = 0x05
	OpStatus      Opcode = 0x06
	OpPrivmsg     Opcode = 0x07
	OpChallenge   Opcode = 0x08
	OpAccept      Opcode = 0x09
	OpDecline     Opcode = 0x0A
	OpGetPeer     Opcode = 0x0B
	OpGetNicks    Opcode = 0x0C
	OpFBAPrivmsg  Opcode = 0x0F
	OpWatch       Opcode = 0x10
	OpSavestate   Opcode = 0x11
	OpGamebuffer  Opcode = 0x12
	OpSpectator   Opcode = 0x14
	OpCancel      Opcode = 0x1C
)

// PushSeqBase is the smallest sequence number reserved for server-initiated
// pushes; any frame with seq >= PushSeqBase was not requested by the peer.
const PushSeqBase uint32 = 0x80000000

// Push codes occupy the low byte of a push sequence number: the high 24
// bits are always 0xFFFFFF.
const pushPrefix = 0xFFFFFF00

// PushSeq builds the sequence number for a given push code.
func PushSeq(code byte) uint32 {
	return pushPrefix | uint32(code)
}

// Server push codes (low byte of a 0xFFFFFFxx sequence).
const (
	PushEstablished   byte = 0xFF // empty payload; "connection established"/ack of join
	PushChat          byte = 0xFE // str nick, str msg
	PushPresence      byte = 0xFD // presence record, see protocol.EncodePresence
	PushChallenge     byte = 0xFC // str nick, str channel
	PushDecline       byte = 0xFB // str nick
	PushQuarkURI      byte = 0xFA // str nick1, str nick2, str uri
	PushPeerAddr      byte = 0xF9 // str host, u32 port, u32 isP1
	PushEmuChat       byte = 0xF8 // str quark, str nick, str msg
	PushSpectatorCnt  byte = 0xF6 // u32 count
	PushAutoSpectate  byte = 0xF5 // empty payload
	PushGamebuffer    byte = 0xF4 // bytes buf (raw, no length prefix)
	PushSavestate     byte = 0xF3 // 4B block2, 4B block1, bytes buf
	PushError         byte = 0xF2 // str message; generic handler-panic notice
	PushCancel        byte = 0xEF // str nick
)

// NACK error codes, carried as a big-endian u32 payload.
const (
	NackAuthFailed       uint32 = 0x06
	NackUnknownOp        uint32 = 0x08 // also: join denied
	NackChallengeRefused uint32 = 0x0A
	NackWatchRefused     uint32 = 0x0B
	NackAcceptRefused    uint32 = 0x0C
	NackDeclineRefused   uint32 = 0x0D
	NackCancelRefused    uint32 = 0x0E
)
