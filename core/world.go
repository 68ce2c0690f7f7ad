package core

import "github.com/fvl-lang/fvl/ir"

// World is the single process-wide state: every account, every deployed
// system, and the block-chain tip. Its lifecycle is init_genesis → apply*
// → drop; tests construct independent worlds rather than sharing one.
type World struct {
	Accounts      map[ir.Address]*Account
	Systems       map[ir.Hash]*System
	NFTInstances  map[string]bool // "token_hex:id" -> ever minted
	BlockNumber   uint64
	StateRoot     ir.Hash
	Admin         ir.Address
}

// NewWorld returns a fresh genesis world with the given admin address.
// The admin is an explicit genesis configuration value, not hard-coded.
func NewWorld(admin ir.Address) *World {
	return &World{
		Accounts:     make(map[ir.Address]*Account),
		Systems:      make(map[ir.Hash]*System),
		NFTInstances: make(map[string]bool),
		Admin:        admin,
	}
}

// peekAccount returns the account or nil without creating it.
func (w *World) peekAccount(addr ir.Address) *Account {
	return w.Accounts[addr]
}

// NonceOf returns the stored nonce for addr, 0 if the account does not
// exist yet.
func (w *World) NonceOf(addr ir.Address) uint64 {
	if a, ok := w.Accounts[addr]; ok {
		return a.Nonce
	}
	return 0
}

// bumpNonce advances addr's nonce directly against World, bypassing the
// scope. Apply calls this once a transaction clears admission, regardless
// of whether execution later fails.
func (w *World) bumpNonce(addr ir.Address) {
	a, ok := w.Accounts[addr]
	if !ok {
		a = newAccount()
		w.Accounts[addr] = a
	}
	a.Nonce++
}

// txScope is a copy-on-write working set for a single apply call. Nothing
// written here is visible in World until commit is called; a failed
// transaction simply discards its scope, leaving World untouched except
// for the nonce bump applied directly by the caller.
type txScope struct {
	world    *World
	accounts map[ir.Address]*Account
	systems  map[ir.Hash]*System
	nft      map[string]bool // keys newly marked instantiated this call
}

func newTxScope(w *World) *txScope {
	return &txScope{
		world:    w,
		accounts: make(map[ir.Address]*Account),
		systems:  make(map[ir.Hash]*System),
		nft:      make(map[string]bool),
	}
}

// nftKey identifies one ERC721/ERC1155 instance across the whole world.
func nftKey(token ir.Address, id ir.Amount) string {
	return token.Hex() + ":" + id.String()
}

// instantiated reports whether key has ever been minted, in this scope or
// in the committed world.
func (s *txScope) instantiated(key string) bool {
	return s.nft[key] || s.world.NFTInstances[key]
}

func (s *txScope) markInstantiated(key string) {
	s.nft[key] = true
}

func (s *txScope) account(addr ir.Address) *Account {
	if a, ok := s.accounts[addr]; ok {
		return a
	}
	orig := s.world.peekAccount(addr)
	var a *Account
	if orig == nil {
		a = newAccount()
	} else {
		a = orig.clone()
	}
	s.accounts[addr] = a
	return a
}

// system returns a copy-on-write System, or nil if it does not exist.
func (s *txScope) system(id ir.Hash) *System {
	if sys, ok := s.systems[id]; ok {
		return sys
	}
	orig := s.world.Systems[id]
	if orig == nil {
		return nil
	}
	sys := orig.clone()
	s.systems[id] = sys
	return sys
}

func (s *txScope) installSystem(sys *System) {
	s.systems[sys.ID] = sys
}

func (s *txScope) commit() {
	for addr, a := range s.accounts {
		s.world.Accounts[addr] = a
	}
	for id, sys := range s.systems {
		s.world.Systems[id] = sys
	}
	for key := range s.nft {
		s.world.NFTInstances[key] = true
	}
}
