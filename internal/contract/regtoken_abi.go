package contract

// RegToken is the registration token: an ERC-20 whose holders register
// addresses on-chain.
//
// Function selectors:
//
//	register(address)      → 0x4420e486
//	isRegistered(address)  → 0xc3c5a547
//	approve(a,u256)        → 0x095ea7b3
//	transfer(a,u256)       → 0xa9059cbb
//	burn(u256)             → 0x42966c68
//	balanceOf(address)     → 0x70a08231
//	decimals()             → 0x313ce567
//	symbol()               → 0x95d89b41
func init() {
	RegisterBuiltin(BuiltinKind{
		ID:          "regtoken",
		Name:        "RegToken (ERC-20 + address registry)",
		Description: "register/isRegistered plus approve, transfer, burn, balanceOf.",
		JSON:        regTokenABI,
	})
}

const regTokenABI = `[
  {"type":"function","name":"register","stateMutability":"nonpayable",
   "inputs":[{"name":"account","type":"address"}],"outputs":[]},
  {"type":"function","name":"isRegistered","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"approve","stateMutability":"nonpayable",
   "inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"transfer","stateMutability":"nonpayable",
   "inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"burn","stateMutability":"nonpayable",
   "inputs":[{"name":"value","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"balanceOf","stateMutability":"view",
   "inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"allowance","stateMutability":"view",
   "inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
  {"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"event","name":"Transfer","anonymous":false,"inputs":[
    {"name":"from","type":"address","indexed":true},
    {"name":"to","type":"address","indexed":true},
    {"name":"value","type":"uint256","indexed":false}]},
  {"type":"event","name":"Approval","anonymous":false,"inputs":[
    {"name":"owner","type":"address","indexed":true},
    {"name":"spender","type":"address","indexed":true},
    {"name":"value","type":"uint256","indexed":false}]},
  {"type":"event","name":"Registered","anonymous":false,"inputs":[
    {"name":"account","type":"address","indexed":true}]},
  {"type":"error","name":"AlreadyRegistered","inputs":[{"name":"account","type":"address"}]},
  {"type":"error","name":"NotRegistered","inputs":[{"name":"account","type":"address"}]},
  {"type":"error","name":"ERC20InsufficientBalance","inputs":[
    {"name":"sender","type":"address"},{"name":"balance","type":"uint256"},{"name":"needed","type":"uint256"}]}
]`
