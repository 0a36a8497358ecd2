package signal

func (ctl *GameWSController) handlePing(
	conn *wsGameConn,
) {
	resp := struct {
		Type string `json:"type"`
	}{
		Type: "pong",
	}
	ctl.sendJSON(conn, resp)
}
