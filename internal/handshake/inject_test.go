package handshake

import (
	"testing"

	"tibiaproxy/internal/packet"
	"tibiaproxy/internal/proxy"
)

func TestGameServerInjectorRewritesWorlds(t *testing.T) {
	inj := &GameServerInjector{Host: "203.0.113.5", Port: 7174}
	c := &proxy.Connection{ID: 1}

	charList := &packet.CharacterListPayload{
		Worlds: []packet.World{
			{ID: 0, Name: "Antica", IP: "10.0.0.1", Port: 7172},
		},
	}
	payload := append([]byte{packet.LoginServerCharList}, packet.WriteCharacterList(charList)...)

	out, err := inj.OnFrame(c, proxy.OriginServer, payload)
	if err != nil {
		t.Fatalf("OnFrame: %v", err)
	}

	got, err := packet.ParseCharacterList(out[1:])
	if err != nil {
		t.Fatalf("ParseCharacterList: %v", err)
	}
	if got.Worlds[0].IP != "203.0.113.5" || got.Worlds[0].Port != 7174 {
		t.Fatalf("world not rewritten: %+v", got.Worlds[0])
	}
}

func TestGameServerInjectorIgnoresClientFrames(t *testing.T) {
	inj := &GameServerInjector{Host: "203.0.113.5", Port: 7174}
	c := &proxy.Connection{ID: 2}

	payload := []byte{packet.LoginServerCharList, 0x00, 0x00, 0x00, 0x00}
	out, err := inj.OnFrame(c, proxy.OriginClient, payload)
	if err != nil {
		t.Fatalf("OnFrame: %v", err)
	}
	if string(out) != string(payload) {
		t.Fatalf("expected client-origin frame to pass through unmodified")
	}
}

func TestGameServerInjectorIgnoresOtherPackets(t *testing.T) {
	inj := &GameServerInjector{Host: "203.0.113.5", Port: 7174}
	c := &proxy.Connection{ID: 3}

	payload := []byte{packet.LoginServerMotd, 'h', 'i'}
	out, err := inj.OnFrame(c, proxy.OriginServer, payload)
	if err != nil {
		t.Fatalf("OnFrame: %v", err)
	}
	if string(out) != string(payload) {
		t.Fatalf("expected non-CharacterList frame to pass through unmodified")
	}
}
