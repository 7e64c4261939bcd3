package protocol

// Payload shapes for every message type in the wire protocol. Field names
// use JSON tags matching the client's expectations verbatim from spec.

type LoginReqPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type StatusMsgPayload struct {
	Status string `json:"status"`
	Msg    string `json:"msg,omitempty"`
}

type UploadInitPayload struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Size        int64  `json:"size"`
	Checksum    string `json:"checksum"`
	Description string `json:"description"`
	Type        string `json:"type"`
	MinPlayers  int    `json:"min_players"`
	MaxPlayers  int    `json:"max_players"`
}

type GameRemoveReqPayload struct {
	Name string `json:"name"`
}

type GameSummary struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	LatestVersion string `json:"latest_version"`
	MinPlayers    int    `json:"min_players"`
	MaxPlayers    int    `json:"max_players"`
	Owner         string `json:"owner"`
}

type GameListRespPayload struct {
	Status string        `json:"status"`
	Games  []GameSummary `json:"games"`
}

type DownloadReqPayload struct {
	GameName string `json:"game_name"`
}

type DownloadInitPayload struct {
	Status   string `json:"status"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum"`
	Version  string `json:"version"`
	GameName string `json:"game_name"`
}

type RoomCreateReqPayload struct {
	RoomName string `json:"room_name"`
	GameID   int64  `json:"game_id"`
}

type RoomSnapshot struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	GameID     int64    `json:"game_id"`
	GameName   string   `json:"game_name"`
	Host       string   `json:"host"`
	Members    []string `json:"members"`
	MaxPlayers int      `json:"max_players"`
	MinPlayers int      `json:"min_players"`
	Status     string   `json:"status"`
}

type RoomRespPayload struct {
	Status string        `json:"status"`
	Msg    string        `json:"msg,omitempty"`
	Room   *RoomSnapshot `json:"room,omitempty"`
}

type RoomListRespPayload struct {
	Rooms []RoomSnapshot `json:"rooms"`
}

type RoomJoinReqPayload struct {
	RoomID int64 `json:"room_id"`
}

type RoomStatusUpdatePayload struct {
	Room RoomSnapshot `json:"room"`
}

type GameLaunchEventPayload struct {
	ServerIP string `json:"server_ip"`
	Port     int    `json:"port"`
	GameID   int64  `json:"game_id"`
	Version  string `json:"version"`
}

type GameRateReqPayload struct {
	GameName string `json:"game_name"`
	Score    int    `json:"score"`
	Comment  string `json:"comment"`
}

type DevMyGamesRespPayload struct {
	Status string        `json:"status"`
	Games  []GameSummary `json:"games"`
}

type ReadyCheckReqPayload struct {
	GameName string `json:"game_name"`
	Version  string `json:"version"`
}

type ReadyCheckRespPayload struct {
	Status string `json:"status"`
	Msg    string `json:"msg,omitempty"`
}

type GameStartFailPayload struct {
	Msg string `json:"msg"`
}

type ForceLogoutPayload struct {
	Msg string `json:"msg"`
}

type GameDetailReqPayload struct {
	GameName string `json:"game_name"`
}

type Review struct {
	User    string `json:"user"`
	Score   int    `json:"score"`
	Comment string `json:"comment"`
	Time    string `json:"time"`
}

type GameDetailRespPayload struct {
	Status      string   `json:"status"`
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Owner       string   `json:"owner"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	MinPlayers  int      `json:"min_players"`
	MaxPlayers  int      `json:"max_players"`
	AvgScore    float64  `json:"avg_score"`
	Reviews     []Review `json:"reviews"`
	HasPlayed   bool     `json:"has_played"`
}

type PluginDescriptor struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

type PluginListRespPayload struct {
	Status  string             `json:"status"`
	Plugins []PluginDescriptor `json:"plugins"`
}

type PluginDownloadReqPayload struct {
	Name string `json:"name"`
}

type PluginDownloadRespPayload struct {
	Status string `json:"status"`
	Code   string `json:"code,omitempty"`
}

type RoomChatInboundPayload struct {
	Msg string `json:"msg"`
}

type RoomChatOutboundPayload struct {
	User string `json:"user"`
	Msg  string `json:"msg"`
}
