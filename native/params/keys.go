package params

// ParamsKeyProtocolConfig is the canonical parameter-store key under which the
// protocol configuration singleton is persisted.
const ParamsKeyProtocolConfig = "params/protocol-config"
