package hub

import (
	"log/slog"

	"github.com/arcadehub/gamehub/internal/model"
	"github.com/arcadehub/gamehub/internal/protocol"
)

func (r *Reactor) handleLogin(id connID, frame protocol.Frame) {
	var req protocol.LoginReqPayload
	if err := protocol.Decode(frame.Payload, &req); err != nil {
		r.sendTo(id, protocol.LoginResp, protocol.StatusMsgPayload{Status: "error", Msg: "malformed request"})
		return
	}

	role := model.Role(req.Role)
	if role != model.RolePlayer && role != model.RoleDeveloper {
		r.sendTo(id, protocol.LoginResp, protocol.StatusMsgPayload{Status: "error", Msg: "invalid role"})
		return
	}

	// Credentials are compared literally: no transport encryption and no
	// password hashing are in scope for this hub.
	user, ok := r.users[sessionKey{role: role, username: req.Username}]
	if !ok || user.Password != req.Password {
		r.sendTo(id, protocol.LoginResp, protocol.StatusMsgPayload{Status: "error", Msg: "invalid credentials"})
		return
	}

	key := sessionKey{role: role, username: req.Username}
	if existing, bound := r.sessionOf[key]; bound {
		r.sendTo(existing, protocol.ForceLogout, protocol.ForceLogoutPayload{Msg: "logged in from another location"})
		r.closeConn(existing)
		if cs, ok := r.conns[existing]; ok {
			cs.loggedIn = false
		}
	}

	cs := r.conns[id]
	cs.username = req.Username
	cs.role = role
	cs.loggedIn = true
	r.sessionOf[key] = id

	slog.Info("login", "user", req.Username, "role", role, "conn", id)
	r.sendTo(id, protocol.LoginResp, protocol.StatusMsgPayload{Status: "ok"})
}

func (r *Reactor) handleRegister(id connID, frame protocol.Frame) {
	var req protocol.LoginReqPayload
	if err := protocol.Decode(frame.Payload, &req); err != nil {
		r.sendTo(id, protocol.RegisterResp, protocol.StatusMsgPayload{Status: "error", Msg: "malformed request"})
		return
	}

	role := model.Role(req.Role)
	if role != model.RolePlayer && role != model.RoleDeveloper {
		r.sendTo(id, protocol.RegisterResp, protocol.StatusMsgPayload{Status: "error", Msg: "invalid role"})
		return
	}
	if req.Username == "" || req.Password == "" {
		r.sendTo(id, protocol.RegisterResp, protocol.StatusMsgPayload{Status: "error", Msg: "username and password required"})
		return
	}
	key := sessionKey{role: role, username: req.Username}
	if _, exists := r.users[key]; exists {
		r.sendTo(id, protocol.RegisterResp, protocol.StatusMsgPayload{Status: "error", Msg: "username taken"})
		return
	}

	r.users[key] = &model.User{
		Username: req.Username,
		Password: req.Password,
		Role:     role,
	}
	if err := r.persistUsers(); err != nil {
		slog.Error("persisting users", "error", err)
	}

	r.sendTo(id, protocol.RegisterResp, protocol.StatusMsgPayload{Status: "ok"})
}
