package keylock

import "sync"

// KeyLock 按 key 的互斥锁
// 用于对同一会话的并发 continue 请求做串行化：同一 key 的持有者互斥，
// 不同 key 互不影响。锁对象常驻（会话数量级有限，不做回收）。
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New 创建 KeyLock
func New() *KeyLock {
	return &KeyLock{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock 获取 key 对应的锁
func (l *KeyLock) Lock(key string) {
	l.get(key).Lock()
}

// Unlock 释放 key 对应的锁
func (l *KeyLock) Unlock(key string) {
	l.get(key).Unlock()
}

func (l *KeyLock) get(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}
