package sockets

/**
  *  @author tryao
  *  @date 2022/09/06 14:20
**/

// InvokeMessage 调用消息的信封
// method是目标方法名；isReturn为0表示请求，为1表示应答
// 应答的arguments固定只有一个元素，即返回值
type InvokeMessage struct {
	Method    string `json:"method"`
	IsReturn  int    `json:"isReturn"`
	Arguments []any  `json:"arguments"`
}

func NewRequest(method string, args ...any) *InvokeMessage {
	if args == nil {
		args = []any{}
	}
	return &InvokeMessage{Method: method, Arguments: args}
}

func NewResponse(method string, value any) *InvokeMessage {
	return &InvokeMessage{Method: method, IsReturn: 1, Arguments: []any{value}}
}

func (m *InvokeMessage) IsRequest() bool {
	return m.IsReturn == 0
}
