package packet

// Client → server opcodes.
const (
	C_OPCODE_HELLO             byte = 1
	C_OPCODE_FIND_PATH         byte = 10
	C_OPCODE_CAN_REACH         byte = 11
	C_OPCODE_IS_WALKABLE       byte = 12
	C_OPCODE_DIMENSIONS        byte = 13
	C_OPCODE_ADD_BOX           byte = 20
	C_OPCODE_REMOVE_BOX        byte = 21
	C_OPCODE_ADD_POLYGON       byte = 22
	C_OPCODE_REMOVE_POLYGON    byte = 23
	C_OPCODE_SUBSCRIBE_CHANGES byte = 30
	C_OPCODE_SAVE_LAYOUT       byte = 40
	C_OPCODE_LOAD_LAYOUT       byte = 41
	C_OPCODE_LIST_LAYOUTS      byte = 42
	C_OPCODE_DELETE_LAYOUT     byte = 43
)

// Server → client opcodes.
const (
	S_OPCODE_HELLO_OK     byte = 101
	S_OPCODE_HELLO_FAIL   byte = 102
	S_OPCODE_PATH_RESULT  byte = 110
	S_OPCODE_BOOL_RESULT  byte = 111
	S_OPCODE_DIMENSIONS   byte = 112
	S_OPCODE_ACK          byte = 120
	S_OPCODE_ERROR        byte = 121
	S_OPCODE_GRID_CHANGED byte = 130
	S_OPCODE_LAYOUT_LIST  byte = 140
)

// Protocol version sent in the HELLO packet.
const ProtocolVersion uint16 = 1
