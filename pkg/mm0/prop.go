package mm0

// PropCalcSource is the propositional calculus specification: Lukasiewicz's
// axiom system for implication and negation, plus the identity theorem
// proved in the .mmb counterpart (mmb.PropCalc).
const PropCalcSource = `-- Propositional logic: Lukasiewicz's axiom system.
delimiter $ ( ) ~ $;
provable sort wff;
var a b c: wff;

term im (p q: wff): wff;
infixr im: $->$ prec 25;

term not (p: wff): wff;
prefix not: $~$ prec 41;

axiom ax_1: $ a -> b -> a $;
axiom ax_2: $ (a -> b -> c) -> (a -> b) -> a -> c $;
axiom ax_3: $ (~a -> ~b) -> b -> a $;
axiom ax_mp: $ a $ > $ a -> b $ > $ b $;

theorem id: $ a -> a $;
`
